package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleAnnouncementHTML = `<!DOCTYPE html>
<html>
<head>
<meta name="ArticleTitle" content="某市财政局办公设备采购项目中标公告">
<meta name="PubDate" content="2024-03-15 10:30">
</head>
<body>
<h2 class="tc">某市财政局办公设备采购项目中标公告</h2>
<span id="pubTime">2024-03-15 10:30</span>
<div class="table">
<table>
<tr><td>项目名称</td><td>办公设备采购项目</td></tr>
<tr><td>品目</td><td>货物/办公设备</td></tr>
<tr><td>行政区域</td><td>某省某市</td></tr>
<tr><td>采购单位</td><td>某市财政局</td></tr>
<tr><td>代理机构名称</td><td>某某招标代理有限公司</td></tr>
<tr><td>总中标金额</td><td>￥120.5万元</td></tr>
</table>
</div>
<div class="vF_detail_content">
<p>一、项目编号：ABC-2024-001</p>
<p>评审专家名单：王专家、李评委</p>
<p>1.采购人信息</p>
<p>名 称：某市财政局</p>
<p>地址：某市解放路1号</p>
<p>联系方式：赵采购 010-88886666</p>
<p>2.采购代理机构信息</p>
<p>名 称：某某招标代理有限公司</p>
<p>地址：某市人民路2号</p>
<p>联系方式：钱代理 010-66668888</p>
<p>3.项目联系方式</p>
<p>项目联系人：黄丹彤16620120513、崔世杰15800204406</p>
</div>
</body>
</html>`

func TestAnnouncementParser_Parse(t *testing.T) {
	p := NewAnnouncementParser()
	ann := p.Parse(sampleAnnouncementHTML, "http://www.ccgp.gov.cn/cggg/t123.htm")

	assert.Equal(t, "某市财政局办公设备采购项目中标公告", ann.Title)
	assert.Equal(t, "2024-03-15 10:30", ann.PublishDate)
	assert.Equal(t, "http://www.ccgp.gov.cn/cggg/t123.htm", ann.URL)

	// 概要表格字段
	assert.Equal(t, "办公设备采购项目", ann.ProjectName)
	assert.Equal(t, "货物/办公设备", ann.Category)
	assert.Equal(t, "某省某市", ann.Region)
	assert.Equal(t, "￥120.5万元", ann.BidAmount)
	assert.Equal(t, "ABC-2024-001", ann.ProjectNo)

	// 采购人
	assert.Equal(t, "某市财政局", ann.BuyerName)
	assert.Equal(t, "某市解放路1号", ann.BuyerAddress)
	assert.Equal(t, "赵采购", ann.BuyerContact)
	assert.Contains(t, ann.BuyerPhones, "010-88886666")

	// 代理机构
	assert.Equal(t, "某某招标代理有限公司", ann.AgentName)
	assert.Equal(t, "某市人民路2号", ann.AgentAddress)
	require.NotEmpty(t, ann.AgentContacts)
	assert.Equal(t, "钱代理", ann.AgentContacts[0].Name)
	assert.Equal(t, []string{"010-66668888"}, ann.AgentContacts[0].Phones)

	// 项目联系人按出现位置与号码配对
	require.Len(t, ann.ProjectContacts, 2)
	assert.Equal(t, "黄丹彤", ann.ProjectContacts[0].Name)
	assert.Equal(t, []string{"16620120513"}, ann.ProjectContacts[0].Phones)
	assert.Equal(t, "崔世杰", ann.ProjectContacts[1].Name)
	assert.Equal(t, []string{"15800204406"}, ann.ProjectContacts[1].Phones)

	// 评审专家
	assert.Equal(t, []string{"王专家", "李评委"}, ann.Experts)

	assert.NotEmpty(t, ann.Content)
}

func TestAnnouncementParser_ExpertFilteredFromContacts(t *testing.T) {
	html := `<html><body>
<div class="vF_detail_content">
<p>评审专家名单：张评审</p>
<p>3.项目联系方式</p>
<p>项目联系人：张评审、李联系 010-12345678</p>
</div>
</body></html>`

	ann := NewAnnouncementParser().Parse(html, "http://example.com/a")
	require.Len(t, ann.ProjectContacts, 1)
	assert.Equal(t, "李联系", ann.ProjectContacts[0].Name)
}

func TestAnnouncementParser_EmptyInput(t *testing.T) {
	ann := NewAnnouncementParser().Parse("", "http://example.com/x")
	assert.Equal(t, "http://example.com/x", ann.URL)
	assert.Empty(t, ann.Title)
	assert.Empty(t, ann.ProjectContacts)
}

func TestAnnouncementParser_SummaryOverridesContent(t *testing.T) {
	// 概要表格给出的采购人优先于正文段落
	html := `<html><body>
<div class="table"><table>
<tr><td>采购单位</td><td>表格里的单位</td></tr>
</table></div>
<div class="vF_detail_content">
<p>1.采购人信息</p>
<p>名 称：正文里的单位</p>
</div>
</body></html>`

	ann := NewAnnouncementParser().Parse(html, "http://example.com/b")
	assert.Equal(t, "表格里的单位", ann.BuyerName)
}
