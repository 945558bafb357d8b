// Package attribution 把项目联系人归属到采购人或代理机构。
// 公告正文里的"项目联系方式"段落不标明联系人属于哪一方，
// 这里通过电话号码与两方已知号码的匹配来判定归属。
package attribution

import (
	"log/slog"
	"strings"
)

// Role 联系人归属角色。
type Role string

const (
	RoleBuyer Role = "buyer"
	RoleAgent Role = "agent"
)

// Organization 一方机构：名称与已知电话集合。
type Organization struct {
	Name   string
	Phones []string
}

// Candidate 待归属的联系人。
type Candidate struct {
	Name   string
	Phones []string
	Email  string
}

// Decision 归属判定结果。Confident 表示通过号码匹配得出，
// 而非默认兜底；日志与统计按此区分。
type Decision struct {
	Candidate Candidate
	Company   string
	Role      Role
	Confident bool
}

// CleanPhone 去掉号码中的非数字字符。
func CleanPhone(phone string) string {
	var b strings.Builder
	for _, r := range phone {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// PhonesMatch 判断两个号码是否指向同一线路：
// 全等，或两边都至少 8 位且后 8 位相同（区号书写差异）。
func PhonesMatch(a, b string) bool {
	da, db := CleanPhone(a), CleanPhone(b)
	if da == "" || db == "" {
		return false
	}
	if da == db {
		return true
	}
	if len(da) >= 8 && len(db) >= 8 {
		return da[len(da)-8:] == db[len(db)-8:]
	}
	return false
}

func anyPhoneMatch(phones []string, known []string) bool {
	for _, p := range phones {
		for _, k := range known {
			if PhonesMatch(p, k) {
				return true
			}
		}
	}
	return false
}

// Resolver 项目联系人归属判定器。
type Resolver struct {
	logger *slog.Logger
}

// NewResolver 创建归属判定器。logger 为 nil 时使用默认 logger。
func NewResolver(logger *slog.Logger) *Resolver {
	if logger == nil {
		logger = slog.Default()
	}
	return &Resolver{logger: logger}
}

// DefaultAttribution 无号码证据时的默认归属：优先代理机构。
// 项目联系方式段落在实践中多为代理机构人员。
func DefaultAttribution(buyer, agent Organization) (string, Role, bool) {
	if agent.Name != "" {
		return agent.Name, RoleAgent, true
	}
	if buyer.Name != "" {
		return buyer.Name, RoleBuyer, true
	}
	return "", "", false
}

// Resolve 为候选联系人判定归属公司。判定顺序：
// 代理号码匹配 → 采购人号码匹配 → 全局电话的归属 → 默认代理优先。
// 两方信息都缺失时返回 ok=false，该候选被丢弃。
func (r *Resolver) Resolve(candidate Candidate, buyer, agent Organization, projectPhone string) (Decision, bool) {
	d := Decision{Candidate: candidate}

	if agent.Name != "" && anyPhoneMatch(candidate.Phones, agent.Phones) {
		d.Company, d.Role, d.Confident = agent.Name, RoleAgent, true
		return d, true
	}
	if buyer.Name != "" && anyPhoneMatch(candidate.Phones, buyer.Phones) {
		d.Company, d.Role, d.Confident = buyer.Name, RoleBuyer, true
		return d, true
	}

	// 候选自身号码匹配不上时借用段落级电话判定
	if projectPhone != "" {
		if agent.Name != "" && anyPhoneMatch([]string{projectPhone}, agent.Phones) {
			d.Company, d.Role, d.Confident = agent.Name, RoleAgent, true
			return d, true
		}
		if buyer.Name != "" && anyPhoneMatch([]string{projectPhone}, buyer.Phones) {
			d.Company, d.Role, d.Confident = buyer.Name, RoleBuyer, true
			return d, true
		}
	}

	company, role, ok := DefaultAttribution(buyer, agent)
	if !ok {
		r.logger.Warn("联系人无法归属，已丢弃", "name", candidate.Name)
		return d, false
	}
	d.Company, d.Role, d.Confident = company, role, false
	r.logger.Debug("联系人按默认规则归属",
		"name", candidate.Name, "company", company, "role", string(role))
	return d, true
}
