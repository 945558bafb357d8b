package parser

import (
	"regexp"
	"strings"
)

const (
	maxTitleLen   = 500
	maxContentLen = 50000
)

var (
	whitespaceRe   = regexp.MustCompile(`\s+`)
	controlCharRe  = regexp.MustCompile("[\x00-\x1f\x7f]")
	blankLinesRe   = regexp.MustCompile(`\n\s*\n`)
	multiSpaceRe   = regexp.MustCompile(` +`)
	phoneCharRe    = regexp.MustCompile(`[^\d\-]`)
	companyPunctRe = regexp.MustCompile(`[、,，;；]`)
	dateSepRe      = regexp.MustCompile(`[年月./]`)
)

// Cleaner 数据清洗器：入库前规范化标题、正文、电话、邮箱等字段。
// 不持有跨文档状态，可并发使用；去重交给存储层的唯一约束。
type Cleaner struct{}

// NewCleaner 创建清洗器。
func NewCleaner() *Cleaner {
	return &Cleaner{}
}

// CleanTitle 规范化标题：压缩空白、去控制字符、超长截断。
func (c *Cleaner) CleanTitle(title string) string {
	title = whitespaceRe.ReplaceAllString(title, " ")
	title = controlCharRe.ReplaceAllString(title, "")
	title = strings.TrimSpace(title)
	if title == "" {
		return "未知标题"
	}
	if runes := []rune(title); len(runes) > maxTitleLen {
		title = string(runes[:maxTitleLen]) + "..."
	}
	return title
}

// CleanURL 规范化 URL：去空白，补全 // 开头的协议。
func (c *Cleaner) CleanURL(url string) string {
	url = strings.TrimSpace(url)
	if strings.HasPrefix(url, "//") {
		url = "http:" + url
	}
	return url
}

// CleanContent 规范化正文：折叠空行与连续空格，超长截断。
func (c *Cleaner) CleanContent(content string) string {
	if content == "" {
		return ""
	}
	content = blankLinesRe.ReplaceAllString(content, "\n\n")
	content = multiSpaceRe.ReplaceAllString(content, " ")
	content = strings.TrimSpace(content)
	if runes := []rune(content); len(runes) > maxContentLen {
		content = string(runes[:maxContentLen]) + "\n...(内容过长，已截断)"
	}
	return content
}

// CleanDate 统一日期格式：年/月/点分等写法转为横线分隔。
func (c *Cleaner) CleanDate(date string) string {
	date = strings.TrimSpace(date)
	date = dateSepRe.ReplaceAllString(date, "-")
	date = strings.ReplaceAll(date, "日", "")
	return strings.TrimSpace(date)
}

// CleanPhones 清洗电话列表：只保留数字和横线，长度 7~15 位有效，保序去重。
func (c *Cleaner) CleanPhones(phones []string) []string {
	var cleaned []string
	seen := make(map[string]bool)
	for _, phone := range phones {
		phone = phoneCharRe.ReplaceAllString(phone, "")
		if len(phone) < 7 || len(phone) > 15 {
			continue
		}
		if !seen[phone] {
			seen[phone] = true
			cleaned = append(cleaned, phone)
		}
	}
	return cleaned
}

// CleanEmails 清洗邮箱列表：小写、基本格式校验，保序去重。
func (c *Cleaner) CleanEmails(emails []string) []string {
	var cleaned []string
	seen := make(map[string]bool)
	for _, email := range emails {
		email = strings.ToLower(strings.TrimSpace(email))
		if !validEmail(email) {
			continue
		}
		if !seen[email] {
			seen[email] = true
			cleaned = append(cleaned, email)
		}
	}
	return cleaned
}

// CleanCompany 清洗公司名称：去空白和分隔标点。
func (c *Cleaner) CleanCompany(company string) string {
	company = strings.TrimSpace(company)
	return companyPunctRe.ReplaceAllString(company, "")
}

// CleanContactName 清洗联系人姓名，长度 2~20 之外视为无效。
func (c *Cleaner) CleanContactName(name string) string {
	name = strings.TrimSpace(name)
	if n := len([]rune(name)); n < 2 || n > 20 {
		return ""
	}
	return name
}

func validEmail(email string) bool {
	if len(email) < 5 || len(email) > 100 {
		return false
	}
	if !strings.Contains(email, "@") || !strings.Contains(email, ".") {
		return false
	}
	first, last := email[0], email[len(email)-1]
	if strings.ContainsRune("@.-", rune(first)) || strings.ContainsRune("@.-", rune(last)) {
		return false
	}
	return true
}
