package parser

import (
	"regexp"
	"sort"
	"strings"
	"unicode"

	"golang.org/x/text/width"
)

// ContactAtom 从一段文本里提取出的单个联系人：
// 姓名可能为空（只有电话的片段），电话可能是多个（缩写扩展或多号合并）。
type ContactAtom struct {
	Name   string
	Phones []string
	Email  string
}

var (
	mobileRe   = regexp.MustCompile(`1[3-9]\d{9}`)
	landlineRe = regexp.MustCompile(`0\d{2,3}-?\d{7,8}`)
	emailRe    = regexp.MustCompile(`[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}`)

	// 分隔符 + 4~8 位短号，视为前一个全号的尾号缩写
	phoneSuffixRe = regexp.MustCompile(`[\\/、，,;\s]+(\d{4,8})\b`)

	nameSeparatorRe = regexp.MustCompile(`[\\/、，,;：:()（）\s]+`)
)

type phoneSpan struct {
	start, end int
	text       string
}

// findPhoneSpans 找出文本中所有完整号码的位置，按出现顺序排列，
// 互相重叠的匹配只保留先出现的。
func findPhoneSpans(text string) []phoneSpan {
	var spans []phoneSpan
	for _, re := range []*regexp.Regexp{landlineRe, mobileRe} {
		for _, loc := range re.FindAllStringIndex(text, -1) {
			spans = append(spans, phoneSpan{start: loc[0], end: loc[1], text: text[loc[0]:loc[1]]})
		}
	}
	sort.Slice(spans, func(i, j int) bool { return spans[i].start < spans[j].start })

	var kept []phoneSpan
	lastEnd := -1
	for _, s := range spans {
		if s.start < lastEnd {
			continue
		}
		kept = append(kept, s)
		lastEnd = s.end
	}
	return kept
}

// ExtractPhones 提取文本中的所有电话号码，支持尾号缩写扩展：
// "010-81168617\8612" 会展开为 010-81168617 和 010-81168612。
//
// 扩展规则：在一个全号结束到下一个全号开始之间查找“分隔符+短号”，
// 用短号替换前一个全号的尾部数字；座机保留区号和横线，手机直接替换尾部。
// 结果按首次出现顺序去重。
func ExtractPhones(text string) []string {
	if text == "" {
		return nil
	}
	// 全角数字和标点折叠为半角，公告里两种写法混用
	text = width.Narrow.String(text)

	spans := findPhoneSpans(text)
	if len(spans) == 0 {
		return nil
	}

	var phones []string
	seen := make(map[string]bool)
	add := func(p string) {
		if p != "" && !seen[p] {
			seen[p] = true
			phones = append(phones, p)
		}
	}

	for i, span := range spans {
		add(span.text)

		gapEnd := len(text)
		if i+1 < len(spans) {
			gapEnd = spans[i+1].start
		}
		gap := text[span.end:gapEnd]

		for _, m := range phoneSuffixRe.FindAllStringSubmatch(gap, -1) {
			add(expandSuffix(span.text, m[1]))
		}
	}

	return phones
}

// expandSuffix 用尾号短号合成完整号码，短号比主体还长时放弃。
func expandSuffix(main, suffix string) string {
	if idx := strings.Index(main, "-"); idx >= 0 {
		prefix, number := main[:idx], main[idx+1:]
		if len(suffix) > len(number) {
			return ""
		}
		return prefix + "-" + number[:len(number)-len(suffix)] + suffix
	}
	if len(suffix) >= len(main) {
		return ""
	}
	return main[:len(main)-len(suffix)] + suffix
}

// ExtractEmails 提取文本中的邮箱地址，统一小写，保序去重。
func ExtractEmails(text string) []string {
	var emails []string
	seen := make(map[string]bool)
	for _, m := range emailRe.FindAllString(width.Narrow.String(text), -1) {
		e := strings.ToLower(m)
		if !seen[e] {
			seen[e] = true
			emails = append(emails, e)
		}
	}
	return emails
}

// ExtractNames 去掉电话和邮箱后，从剩余文本中切出候选姓名：
// 仅保留汉字和拉丁字母组成、长度不小于 2 的片段。
func ExtractNames(text string) []string {
	residual := removePhoneAndEmailSpans(width.Narrow.String(text))

	var names []string
	seen := make(map[string]bool)
	for _, token := range nameSeparatorRe.Split(residual, -1) {
		name := keepNameRunes(token)
		if len([]rune(name)) < 2 {
			continue
		}
		if !seen[name] {
			seen[name] = true
			names = append(names, name)
		}
	}
	return names
}

func removePhoneAndEmailSpans(text string) string {
	type span struct{ start, end int }
	var cuts []span
	for _, s := range findPhoneSpans(text) {
		cuts = append(cuts, span{s.start, s.end})
	}
	for _, loc := range emailRe.FindAllStringIndex(text, -1) {
		cuts = append(cuts, span{loc[0], loc[1]})
	}
	sort.Slice(cuts, func(i, j int) bool { return cuts[i].start < cuts[j].start })

	var b strings.Builder
	pos := 0
	for _, c := range cuts {
		if c.start > pos {
			b.WriteString(text[pos:c.start])
		}
		if c.end > pos {
			pos = c.end
		}
	}
	if pos < len(text) {
		b.WriteString(text[pos:])
	}
	return b.String()
}

func keepNameRunes(token string) string {
	var b strings.Builder
	for _, r := range token {
		if unicode.Is(unicode.Han, r) ||
			(r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// ParseContactField 解析一个联系方式片段（表格单元格值或正文段落），
// 输出零个或多个联系人原子。
//
// 姓名与电话数量一致时按出现位置一一配对；数量不一致时把全部电话
// 挂到每个姓名上（宁可多关联也不丢号码）；没有姓名时产出一个空名
// 原子携带全部电话。
func ParseContactField(text string) []ContactAtom {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}

	phones := ExtractPhones(text)
	emails := ExtractEmails(text)
	names := ExtractNames(text)

	if len(names) == 0 {
		if len(phones) == 0 && len(emails) == 0 {
			return nil
		}
		atom := ContactAtom{Phones: phones}
		if len(emails) > 0 {
			atom.Email = emails[0]
		}
		return []ContactAtom{atom}
	}

	atoms := make([]ContactAtom, 0, len(names))
	paired := len(names) == len(phones)

	for i, name := range names {
		atom := ContactAtom{Name: name}
		if paired {
			atom.Phones = []string{phones[i]}
		} else if len(phones) > 0 {
			atom.Phones = append([]string(nil), phones...)
		}
		switch {
		case len(emails) == len(names):
			atom.Email = emails[i]
		case i == 0 && len(emails) > 0:
			atom.Email = emails[0]
		}
		atoms = append(atoms, atom)
	}

	return atoms
}
