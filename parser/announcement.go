package parser

import (
	"log/slog"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Announcement 单份公告的规范化解析结果。
// 解析失败或页面为空时返回只带 URL 的空记录，调用方据此跳过而不中断批次。
type Announcement struct {
	Title       string
	URL         string
	PublishDate string
	Source      string

	ProjectNo   string
	ProjectName string
	Category    string
	Region      string

	Supplier        string
	SupplierAddress string
	BidAmount       string

	BuyerName    string
	BuyerAddress string
	BuyerContact string
	BuyerPhones  []string
	BuyerEmail   string

	AgentName     string
	AgentAddress  string
	AgentContacts []ContactAtom

	ProjectContacts []ContactAtom
	ProjectPhone    string

	Experts []string
	Content string
}

// summaryData 概要表格映射出的中间数据。
type summaryData struct {
	projectName string
	category    string
	region      string
	publishDate string

	buyerName       string
	buyerAddress    string
	buyerContactRaw string

	agentName       string
	agentAddress    string
	agentContactRaw string

	supplierName    string
	supplierAddress string

	amount string

	experts string

	projectContactRaw string
	projectPhone      string
}

// summaryFieldTable 概要表格的键 → 字段映射表。先精确匹配，再子串匹配。
// 新版式的键名通过扩展该表适配。
var summaryFieldTable = []struct {
	key    string
	assign func(*summaryData, string)
}{
	{"采购项目名称", func(d *summaryData, v string) { d.projectName = v }},
	{"项目名称", func(d *summaryData, v string) { d.projectName = v }},
	{"品目", func(d *summaryData, v string) { d.category = v }},
	{"行政区域", func(d *summaryData, v string) { d.region = v }},
	{"公告时间", func(d *summaryData, v string) { d.publishDate = v }},
	{"公告日期", func(d *summaryData, v string) { d.publishDate = v }},

	{"采购单位地址", func(d *summaryData, v string) { d.buyerAddress = v }},
	{"采购人地址", func(d *summaryData, v string) { d.buyerAddress = v }},
	{"采购单位联系方式", func(d *summaryData, v string) { d.buyerContactRaw = v }},
	{"采购人联系方式", func(d *summaryData, v string) { d.buyerContactRaw = v }},
	{"采购单位", func(d *summaryData, v string) { d.buyerName = v }},
	{"采购人", func(d *summaryData, v string) { d.buyerName = v }},

	{"代理机构地址", func(d *summaryData, v string) { d.agentAddress = v }},
	{"代理机构联系方式", func(d *summaryData, v string) { d.agentContactRaw = v }},
	{"代理机构联系人", func(d *summaryData, v string) { d.agentContactRaw = v }},
	{"代理机构名称", func(d *summaryData, v string) { d.agentName = v }},
	{"代理机构", func(d *summaryData, v string) { d.agentName = v }},

	{"供应商名称", func(d *summaryData, v string) { d.supplierName = v }},
	{"中标人地址", func(d *summaryData, v string) { d.supplierAddress = v }},
	{"中标人", func(d *summaryData, v string) { d.supplierName = v }},
	{"中标单位", func(d *summaryData, v string) { d.supplierName = v }},
	{"供应商地址", func(d *summaryData, v string) { d.supplierAddress = v }},

	{"总中标金额", func(d *summaryData, v string) { d.amount = v }},
	{"中标金额", func(d *summaryData, v string) { d.amount = v }},
	{"成交金额", func(d *summaryData, v string) { d.amount = v }},

	{"评审专家名单", func(d *summaryData, v string) { d.experts = v }},
	{"评审专家", func(d *summaryData, v string) { d.experts = v }},

	{"项目联系人", func(d *summaryData, v string) { d.projectContactRaw = v }},
	{"项目联系电话", func(d *summaryData, v string) { d.projectPhone = v }},
	{"联系人", func(d *summaryData, v string) { d.projectContactRaw = v }},
	{"联系电话", func(d *summaryData, v string) { d.projectPhone = v }},
}

// 正文中会打断专家名单的段落标题
var expertSectionBreaks = []string{
	"中标（成交）信息", "主要标的信息", "代理服务费", "公告期限",
	"其它补充事宜", "其他补充事宜", "凡对本次公告",
	"采购人信息", "代理机构", "项目联系",
}

// AnnouncementParser 公告解析器：表格网格 + 段落状态机 + 字段提取
// 组合为一条完整的公告记录。无内部状态，可并发使用。
type AnnouncementParser struct {
	logger *slog.Logger
}

// NewAnnouncementParser 创建公告解析器。
func NewAnnouncementParser() *AnnouncementParser {
	return &AnnouncementParser{logger: slog.Default()}
}

// Parse 解析公告页面。html 为空或无法解析时返回空记录，不返回错误。
func (p *AnnouncementParser) Parse(html, url string) *Announcement {
	ann := &Announcement{URL: url, Source: "ccgp-bxsearch"}
	if strings.TrimSpace(html) == "" {
		return ann
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		p.logger.Warn("公告页面解析失败", "url", url, "error", err)
		return ann
	}

	p.parseMeta(doc, ann)

	summary := p.parseSummaryTable(doc)
	blocks := contentBlocks(doc)
	p.applySummary(ann, summary)
	p.applyContent(ann, blocks, summary)

	p.filterExperts(ann)

	ann.Content = strings.Join(blocks, "\n")

	p.logger.Debug("公告解析完成",
		"url", url,
		"buyer", ann.BuyerName,
		"agent", ann.AgentName,
		"project_contacts", len(ann.ProjectContacts))
	return ann
}

func (p *AnnouncementParser) parseMeta(doc *goquery.Document, ann *Announcement) {
	if content, ok := doc.Find(`meta[name="ArticleTitle"]`).Attr("content"); ok {
		ann.Title = strings.TrimSpace(content)
	}
	if ann.Title == "" {
		ann.Title = strings.TrimSpace(doc.Find("h2.tc").First().Text())
	}

	if content, ok := doc.Find(`meta[name="PubDate"]`).Attr("content"); ok {
		ann.PublishDate = strings.TrimSpace(content)
	}
	if ann.PublishDate == "" {
		ann.PublishDate = strings.TrimSpace(doc.Find("span#pubTime").First().Text())
	}
}

// parseSummaryTable 解析概要表格（div.table 内的 table）。
func (p *AnnouncementParser) parseSummaryTable(doc *goquery.Document) *summaryData {
	data := &summaryData{}

	table := doc.Find("div.table table").First()
	if table.Length() == 0 {
		return data
	}

	kv := BuildTableGrid(table).KeyValues()
	for key, value := range kv {
		if !applySummaryField(data, key, value, true) {
			applySummaryField(data, key, value, false)
		}
	}
	return data
}

func applySummaryField(data *summaryData, key, value string, exact bool) bool {
	for _, entry := range summaryFieldTable {
		match := entry.key == key
		if !exact {
			match = strings.Contains(key, entry.key) || strings.Contains(entry.key, key)
		}
		if match {
			entry.assign(data, value)
			return true
		}
	}
	return false
}

// contentBlocks 取正文容器内的段落文本，保持文档顺序。
func contentBlocks(doc *goquery.Document) []string {
	var blocks []string
	doc.Find("div.vF_detail_content").First().Find("p,strong").Each(func(_ int, sel *goquery.Selection) {
		// strong 常嵌在 p 里，跳过重复的嵌套文本
		if sel.Is("strong") && sel.ParentsFiltered("p").Length() > 0 {
			return
		}
		text := strings.TrimSpace(sel.Text())
		if text != "" {
			blocks = append(blocks, text)
		}
	})
	return blocks
}

func (p *AnnouncementParser) applySummary(ann *Announcement, s *summaryData) {
	ann.ProjectName = s.projectName
	ann.Category = s.category
	ann.Region = s.region
	if ann.PublishDate == "" {
		ann.PublishDate = s.publishDate
	}

	ann.BuyerName = s.buyerName
	ann.BuyerAddress = s.buyerAddress
	mergeBuyerAtoms(ann, ParseContactField(s.buyerContactRaw))

	ann.AgentName = s.agentName
	ann.AgentAddress = s.agentAddress
	ann.AgentContacts = appendNamedAtoms(ann.AgentContacts, ParseContactField(s.agentContactRaw))

	ann.Supplier = s.supplierName
	ann.SupplierAddress = s.supplierAddress
	ann.BidAmount = s.amount

	for _, atom := range ParseContactField(s.projectContactRaw) {
		if atom.Name != "" {
			ann.ProjectContacts = append(ann.ProjectContacts, atom)
		}
	}
	ann.ProjectPhone = strings.TrimSpace(s.projectPhone)

	if s.experts != "" {
		ann.Experts = splitExpertList(s.experts)
	}
}

// applyContent 用正文段落补全概要表格缺失的字段。
func (p *AnnouncementParser) applyContent(ann *Announcement, blocks []string, s *summaryData) {
	for _, block := range blocks {
		if strings.Contains(block, "项目编号") && ann.ProjectNo == "" {
			ann.ProjectNo = LabelValue(block)
		} else if strings.Contains(block, "项目名称") && !strings.Contains(block, "项目编号") && ann.ProjectName == "" {
			ann.ProjectName = LabelValue(block)
		}
	}

	if len(ann.Experts) == 0 {
		ann.Experts = extractExperts(blocks)
	}

	for _, line := range SegmentBlocks(blocks) {
		switch line.Role {
		case RoleBuyer:
			p.applyBuyerLine(ann, line.Text)
		case RoleAgent:
			p.applyAgentLine(ann, line.Text)
		case RoleProject:
			p.applyProjectLine(ann, line.Text)
		}
	}

	// 正文电话行回填到尚无号码的代理联系人上
	backfillAgentPhones(ann)
}

func (p *AnnouncementParser) applyBuyerLine(ann *Announcement, text string) {
	switch ClassifyDataLine(text) {
	case FieldName:
		if ann.BuyerName == "" {
			ann.BuyerName = LabelValue(text)
		}
	case FieldAddress:
		if ann.BuyerAddress == "" {
			ann.BuyerAddress = LabelValue(text)
		}
	case FieldPhone:
		ann.BuyerPhones = mergePhones(ann.BuyerPhones, ExtractPhones(text))
	case FieldContact:
		mergeBuyerAtoms(ann, ParseContactField(LabelValue(text)))
	}
}

func (p *AnnouncementParser) applyAgentLine(ann *Announcement, text string) {
	switch ClassifyDataLine(text) {
	case FieldName:
		if ann.AgentName == "" {
			ann.AgentName = LabelValue(text)
		}
	case FieldAddress:
		if ann.AgentAddress == "" {
			ann.AgentAddress = LabelValue(text)
		}
	case FieldPhone:
		phones := ExtractPhones(text)
		if len(phones) == 0 {
			return
		}
		if len(ann.AgentContacts) == 0 {
			ann.AgentContacts = append(ann.AgentContacts, ContactAtom{Phones: phones})
			return
		}
		for i := range ann.AgentContacts {
			if len(ann.AgentContacts[i].Phones) == 0 {
				ann.AgentContacts[i].Phones = append([]string(nil), phones...)
			}
		}
	case FieldContact:
		ann.AgentContacts = appendNamedAtoms(ann.AgentContacts, ParseContactField(LabelValue(text)))
	}
}

func (p *AnnouncementParser) applyProjectLine(ann *Announcement, text string) {
	switch ClassifyDataLine(text) {
	case FieldProjectNames:
		for _, atom := range ParseContactField(LabelValue(text)) {
			if atom.Name != "" && !hasAtomNamed(ann.ProjectContacts, atom.Name) {
				ann.ProjectContacts = append(ann.ProjectContacts, atom)
			}
		}
	case FieldPhone, FieldContact:
		if ann.ProjectPhone == "" {
			ann.ProjectPhone = LabelValue(text)
		}
	}
}

// filterExperts 把被误识别为联系人的评审专家从各角色列表中移除。
func (p *AnnouncementParser) filterExperts(ann *Announcement) {
	if len(ann.Experts) == 0 {
		return
	}
	expertSet := make(map[string]bool, len(ann.Experts))
	for _, e := range ann.Experts {
		expertSet[e] = true
	}

	if expertSet[ann.BuyerContact] {
		p.logger.Warn("移除误识别为联系人的专家", "name", ann.BuyerContact, "role", "buyer")
		ann.BuyerContact = ""
	}
	ann.AgentContacts = dropExpertAtoms(ann.AgentContacts, expertSet, p.logger, "agent")
	ann.ProjectContacts = dropExpertAtoms(ann.ProjectContacts, expertSet, p.logger, "project")
}

func dropExpertAtoms(atoms []ContactAtom, experts map[string]bool, logger *slog.Logger, role string) []ContactAtom {
	kept := atoms[:0]
	for _, atom := range atoms {
		if atom.Name != "" && experts[atom.Name] {
			logger.Warn("移除误识别为联系人的专家", "name", atom.Name, "role", role)
			continue
		}
		kept = append(kept, atom)
	}
	return kept
}

// extractExperts 从正文提取评审专家名单：评审专家标题之后的段落
// 累积到下一个段落标题为止。
func extractExperts(blocks []string) []string {
	var experts []string
	inSection := false

	for _, block := range blocks {
		if strings.Contains(block, "评审专家") {
			inSection = true
			if v := LabelValue(block); v != "" && !strings.Contains(v, "评审专家") {
				experts = append(experts, splitExpertList(v)...)
			}
			continue
		}
		if !inSection {
			continue
		}
		if isExpertSectionBreak(block) {
			break
		}
		experts = append(experts, splitExpertList(block)...)
	}

	return experts
}

func isExpertSectionBreak(block string) bool {
	for _, marker := range expertSectionBreaks {
		if strings.Contains(block, marker) {
			return true
		}
	}
	return false
}

func splitExpertList(text string) []string {
	var names []string
	for _, part := range strings.FieldsFunc(text, func(r rune) bool {
		return r == '、' || r == '，' || r == ',' || r == ';' || r == '；' || r == ' '
	}) {
		if name := strings.TrimSpace(part); name != "" {
			names = append(names, name)
		}
	}
	return names
}

func mergeBuyerAtoms(ann *Announcement, atoms []ContactAtom) {
	for _, atom := range atoms {
		if ann.BuyerContact == "" && atom.Name != "" {
			ann.BuyerContact = atom.Name
		}
		ann.BuyerPhones = mergePhones(ann.BuyerPhones, atom.Phones)
		if ann.BuyerEmail == "" && atom.Email != "" {
			ann.BuyerEmail = atom.Email
		}
	}
}

func appendNamedAtoms(dst, atoms []ContactAtom) []ContactAtom {
	for _, atom := range atoms {
		if atom.Name == "" && len(atom.Phones) == 0 {
			continue
		}
		if atom.Name != "" && hasAtomNamed(dst, atom.Name) {
			continue
		}
		dst = append(dst, atom)
	}
	return dst
}

func hasAtomNamed(atoms []ContactAtom, name string) bool {
	for _, atom := range atoms {
		if atom.Name == name {
			return true
		}
	}
	return false
}

func mergePhones(dst, src []string) []string {
	seen := make(map[string]bool, len(dst))
	for _, p := range dst {
		seen[p] = true
	}
	for _, p := range src {
		if p != "" && !seen[p] {
			seen[p] = true
			dst = append(dst, p)
		}
	}
	return dst
}

func backfillAgentPhones(ann *Announcement) {
	var pool []string
	for _, atom := range ann.AgentContacts {
		pool = mergePhones(pool, atom.Phones)
	}
	if len(pool) == 0 {
		return
	}
	for i := range ann.AgentContacts {
		if len(ann.AgentContacts[i].Phones) == 0 {
			ann.AgentContacts[i].Phones = append([]string(nil), pool...)
		}
	}
}

// AgentPhones 代理机构所有联系人电话的并集，供归属判定使用。
func (a *Announcement) AgentPhones() []string {
	var pool []string
	for _, atom := range a.AgentContacts {
		pool = mergePhones(pool, atom.Phones)
	}
	return pool
}
