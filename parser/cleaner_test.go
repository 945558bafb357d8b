package parser

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCleanTitle(t *testing.T) {
	c := NewCleaner()

	assert.Equal(t, "某某项目 中标公告", c.CleanTitle("  某某项目\n\t中标公告  "))
	assert.Equal(t, "未知标题", c.CleanTitle("   "))

	long := strings.Repeat("标", 600)
	cleaned := c.CleanTitle(long)
	assert.Equal(t, 503, len([]rune(cleaned)))
	assert.True(t, strings.HasSuffix(cleaned, "..."))
}

func TestCleanURL(t *testing.T) {
	c := NewCleaner()
	assert.Equal(t, "http://www.ccgp.gov.cn/a.htm", c.CleanURL(" //www.ccgp.gov.cn/a.htm "))
	assert.Equal(t, "https://example.com", c.CleanURL("https://example.com"))
}

func TestCleanContent(t *testing.T) {
	c := NewCleaner()
	assert.Equal(t, "第一段\n\n第二段", c.CleanContent("第一段\n \n\n第二段"))
	assert.Equal(t, "a b", c.CleanContent("a    b"))
	assert.Equal(t, "", c.CleanContent(""))
}

func TestCleanDate(t *testing.T) {
	c := NewCleaner()
	assert.Equal(t, "2024-03-15", c.CleanDate("2024年03月15日"))
	assert.Equal(t, "2024-03-15", c.CleanDate("2024.03.15"))
	assert.Equal(t, "2024-03-15", c.CleanDate("2024/03/15"))
	assert.Equal(t, "2024-03-15", c.CleanDate(" 2024-03-15 "))
}

func TestCleanPhones(t *testing.T) {
	c := NewCleaner()
	phones := c.CleanPhones([]string{
		"010-12345678",
		"010-12345678", // 重复
		"123",          // 过短
		"电话:13912345678",
	})
	assert.Equal(t, []string{"010-12345678", "13912345678"}, phones)
}

func TestCleanEmails(t *testing.T) {
	c := NewCleaner()
	emails := c.CleanEmails([]string{
		"ZhangSan@Example.com",
		"zhangsan@example.com", // 小写后重复
		"bad@",
		"@bad.com",
		"no-at-sign",
	})
	assert.Equal(t, []string{"zhangsan@example.com"}, emails)
}

func TestCleanCompany(t *testing.T) {
	c := NewCleaner()
	assert.Equal(t, "某某公司", c.CleanCompany(" 某某、公司 "))
}

func TestCleanContactName(t *testing.T) {
	c := NewCleaner()
	assert.Equal(t, "张三", c.CleanContactName(" 张三 "))
	assert.Equal(t, "", c.CleanContactName("王"))
	assert.Equal(t, "", c.CleanContactName(strings.Repeat("名", 21)))
}
