package pipeline

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gpcards/database"
)

const testAnnouncementHTML = `<html><body>
<meta name="ArticleTitle" content="测试项目中标公告">
<div class="table"><table>
<tr><td>采购单位</td><td>某市财政局</td></tr>
<tr><td>代理机构名称</td><td>某某招标代理有限公司</td></tr>
</table></div>
<div class="vF_detail_content">
<p>1.采购人信息</p>
<p>联系方式：赵采购 010-11112222</p>
<p>2.采购代理机构信息</p>
<p>联系方式：钱代理 010-88886666</p>
<p>3.项目联系方式</p>
<p>项目联系人：孙项目 010-88886666</p>
</div>
</body></html>`

func testPipelineDB(t *testing.T) *database.DB {
	t.Helper()
	db, err := database.New(filepath.Join(t.TempDir(), "pipe.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestProcessor_Process(t *testing.T) {
	db := testPipelineDB(t)
	p := NewProcessor(db, nil, 1)
	ctx := context.Background()

	res := p.Process(ctx, Document{
		URL:  "http://www.ccgp.gov.cn/t/1.htm",
		HTML: testAnnouncementHTML,
	})
	require.NoError(t, res.Err)
	assert.False(t, res.Skipped)
	assert.NotZero(t, res.AnnouncementID)
	assert.Equal(t, 3, res.Cards)

	// 项目联系人的号码与代理号码一致，应归到代理公司名下
	cards, err := db.GetBusinessCards(ctx, database.CardQuery{Contact: "孙项目", Exact: true})
	require.NoError(t, err)
	require.Len(t, cards, 1)
	assert.Equal(t, "某某招标代理有限公司", cards[0].Company)

	buyerCards, err := db.GetBusinessCards(ctx, database.CardQuery{Contact: "赵采购", Exact: true})
	require.NoError(t, err)
	require.Len(t, buyerCards, 1)
	assert.Equal(t, "某市财政局", buyerCards[0].Company)
}

func TestProcessor_PhonelessProjectContactGetsProjectPhone(t *testing.T) {
	db := testPipelineDB(t)
	p := NewProcessor(db, nil, 1)
	ctx := context.Background()

	// 项目联系人一行只有姓名，电话在段落级单独一行给出
	html := `<html><body>
<meta name="ArticleTitle" content="测试项目中标公告">
<div class="vF_detail_content">
<p>1.采购人信息</p>
<p>名称：某市财政局</p>
<p>2.采购代理机构信息</p>
<p>名称：某某招标代理有限公司</p>
<p>3.项目联系方式</p>
<p>项目联系人：孙项目</p>
<p>电话：010-88886666</p>
</div>
</body></html>`

	res := p.Process(ctx, Document{URL: "http://www.ccgp.gov.cn/t/20.htm", HTML: html})
	require.NoError(t, res.Err)

	cards, err := db.GetBusinessCards(ctx, database.CardQuery{Contact: "孙项目", Exact: true})
	require.NoError(t, err)
	require.Len(t, cards, 1)
	assert.Equal(t, []string{"010-88886666"}, cards[0].Phones)
}

func TestProcessor_SkipExistingURL(t *testing.T) {
	db := testPipelineDB(t)
	p := NewProcessor(db, nil, 1)
	ctx := context.Background()

	doc := Document{URL: "http://www.ccgp.gov.cn/t/2.htm", HTML: testAnnouncementHTML}
	first := p.Process(ctx, doc)
	require.NoError(t, first.Err)

	second := p.Process(ctx, doc)
	require.NoError(t, second.Err)
	assert.True(t, second.Skipped)
	assert.Equal(t, first.AnnouncementID, second.AnnouncementID)

	stats, err := db.GetStats(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 1, stats.Announcements)
}

func TestProcessor_ProcessAll(t *testing.T) {
	db := testPipelineDB(t)
	p := NewProcessor(db, nil, 2)

	docs := []Document{
		{URL: "http://www.ccgp.gov.cn/t/10.htm", HTML: testAnnouncementHTML},
		{URL: "http://www.ccgp.gov.cn/t/11.htm", HTML: testAnnouncementHTML},
		{URL: "http://www.ccgp.gov.cn/t/12.htm", HTML: ""},
	}
	results := p.ProcessAll(context.Background(), docs)
	require.Len(t, results, 3)
	for _, res := range results {
		assert.NoError(t, res.Err)
	}

	stats, err := db.GetStats(context.Background())
	require.NoError(t, err)
	assert.EqualValues(t, 3, stats.Announcements)

	// 同一联系人在两份公告中出现，名片只有一张、提及数为 2
	cards, err := db.GetBusinessCards(context.Background(), database.CardQuery{Contact: "钱代理", Exact: true})
	require.NoError(t, err)
	require.Len(t, cards, 1)
	assert.Equal(t, 2, cards[0].Mentions)
}

func TestReattributor_Run(t *testing.T) {
	db := testPipelineDB(t)
	ctx := context.Background()

	content := "1.采购人信息\n电话：010-11112222\n2.采购代理机构信息\n电话：010-88886666"
	annID, err := db.InsertAnnouncement(ctx, database.AnnouncementRecord{
		Title:     "公告",
		URL:       "http://fix/1",
		BuyerName: "某市财政局",
		AgentName: "某某代理公司",
		Content:   content,
	})
	require.NoError(t, err)

	// 历史数据把代理号码的联系人错挂在采购人名下
	wrongCard, err := db.UpsertBusinessCard(ctx, database.BusinessCard{
		Company:     "某市财政局",
		ContactName: "孙项目",
		Phones:      []string{"010-88886666"},
	})
	require.NoError(t, err)
	require.NoError(t, db.AddBusinessCardMention(ctx, wrongCard, annID, "project"))

	report, err := NewReattributor(db, nil).Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, report.Checked)
	assert.Equal(t, 1, report.Moved)
	assert.EqualValues(t, 1, report.Orphans)

	cards, err := db.GetBusinessCards(ctx, database.CardQuery{Contact: "孙项目", Exact: true})
	require.NoError(t, err)
	require.Len(t, cards, 1)
	assert.Equal(t, "某某代理公司", cards[0].Company)
}
