package attribution

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCleanPhone(t *testing.T) {
	assert.Equal(t, "01088886666", CleanPhone("010-8888 6666"))
	assert.Equal(t, "13912345678", CleanPhone("13912345678"))
	assert.Equal(t, "", CleanPhone("电话待定"))
}

func TestPhonesMatch(t *testing.T) {
	tests := []struct {
		name string
		a, b string
		want bool
	}{
		{"完全相同", "010-88886666", "010-88886666", true},
		{"格式不同数字相同", "010-88886666", "01088886666", true},
		{"后八位相同区号不同", "010-88886666", "021-88886666", true},
		{"后八位不同", "010-88886666", "010-88885555", false},
		{"短号不做后缀匹配", "8886666", "88886666", false},
		{"空号码", "", "010-88886666", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, PhonesMatch(tt.a, tt.b))
		})
	}
}

func TestResolve_AgentPhoneMatch(t *testing.T) {
	r := NewResolver(nil)
	buyer := Organization{Name: "财政局", Phones: []string{"010-11112222"}}
	agent := Organization{Name: "代理公司", Phones: []string{"010-88886666"}}

	d, ok := r.Resolve(Candidate{Name: "张三", Phones: []string{"88886666"}}, buyer, agent, "")
	require.True(t, ok)
	assert.Equal(t, "代理公司", d.Company)
	assert.Equal(t, RoleAgent, d.Role)
	assert.True(t, d.Confident)
}

func TestResolve_BuyerPhoneMatch(t *testing.T) {
	r := NewResolver(nil)
	buyer := Organization{Name: "财政局", Phones: []string{"010-11112222"}}
	agent := Organization{Name: "代理公司", Phones: []string{"010-88886666"}}

	d, ok := r.Resolve(Candidate{Name: "李四", Phones: []string{"010-11112222"}}, buyer, agent, "")
	require.True(t, ok)
	assert.Equal(t, "财政局", d.Company)
	assert.Equal(t, RoleBuyer, d.Role)
	assert.True(t, d.Confident)
}

func TestResolve_AgentMatchBeatsBuyerMatch(t *testing.T) {
	// 两方号码都命中时，代理机构优先
	r := NewResolver(nil)
	shared := []string{"010-88886666"}
	buyer := Organization{Name: "财政局", Phones: shared}
	agent := Organization{Name: "代理公司", Phones: shared}

	d, ok := r.Resolve(Candidate{Name: "王五", Phones: shared}, buyer, agent, "")
	require.True(t, ok)
	assert.Equal(t, "代理公司", d.Company)
}

func TestResolve_ProjectPhoneFallback(t *testing.T) {
	// 候选自身无号码时，借用段落级电话判定
	r := NewResolver(nil)
	buyer := Organization{Name: "财政局", Phones: []string{"010-11112222"}}
	agent := Organization{Name: "代理公司", Phones: []string{"010-88886666"}}

	d, ok := r.Resolve(Candidate{Name: "赵六"}, buyer, agent, "010-11112222")
	require.True(t, ok)
	assert.Equal(t, "财政局", d.Company)
	assert.True(t, d.Confident)
}

func TestResolve_ProjectPhoneFallbackWithUnmatchedPhones(t *testing.T) {
	// 候选自带号码但两方都匹配不上时，仍借用段落级电话判定
	r := NewResolver(nil)
	buyer := Organization{Name: "财政局", Phones: []string{"010-11112222"}}
	agent := Organization{Name: "代理公司", Phones: []string{"010-88886666"}}

	d, ok := r.Resolve(Candidate{Name: "钱十", Phones: []string{"13900000000"}}, buyer, agent, "010-11112222")
	require.True(t, ok)
	assert.Equal(t, "财政局", d.Company)
	assert.Equal(t, RoleBuyer, d.Role)
	assert.True(t, d.Confident)
}

func TestResolve_DefaultAgentFirst(t *testing.T) {
	r := NewResolver(nil)
	buyer := Organization{Name: "财政局"}
	agent := Organization{Name: "代理公司"}

	d, ok := r.Resolve(Candidate{Name: "孙七", Phones: []string{"13900000000"}}, buyer, agent, "")
	require.True(t, ok)
	assert.Equal(t, "代理公司", d.Company)
	assert.False(t, d.Confident)
}

func TestResolve_DefaultBuyerWhenNoAgent(t *testing.T) {
	r := NewResolver(nil)
	buyer := Organization{Name: "财政局"}

	d, ok := r.Resolve(Candidate{Name: "周八"}, buyer, Organization{}, "")
	require.True(t, ok)
	assert.Equal(t, "财政局", d.Company)
	assert.Equal(t, RoleBuyer, d.Role)
}

func TestResolve_DroppedWhenNoOrganizations(t *testing.T) {
	r := NewResolver(nil)
	_, ok := r.Resolve(Candidate{Name: "吴九"}, Organization{}, Organization{}, "")
	assert.False(t, ok)
}
