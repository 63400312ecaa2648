package leave

import "github.com/shopspring/decimal"

// Policy は休暇種別ごとの月次付与日数と繰越上限です。
type Policy struct {
	Type         Type
	AccrualRate  decimal.Decimal
	MaxCarryOver decimal.Decimal
}

// Accrues は月次付与の対象か判定します。
func (p Policy) Accrues() bool {
	return p.AccrualRate.IsPositive()
}

// Policies は種別から Policy を引く表です。
type Policies map[Type]Policy

// DefaultPolicies は Vacation 2.0 日 / 月 (繰越 5 日)、Sick 1.0、Personal 0.5、その他 0 です。
func DefaultPolicies() Policies {
	policies := make(Policies, len(Types()))
	for _, t := range Types() {
		policies[t] = Policy{Type: t, AccrualRate: decimal.Zero, MaxCarryOver: decimal.Zero}
	}
	policies[TypeVacation] = Policy{Type: TypeVacation, AccrualRate: decimal.NewFromInt(2), MaxCarryOver: decimal.NewFromInt(5)}
	policies[TypeSick] = Policy{Type: TypeSick, AccrualRate: decimal.NewFromInt(1), MaxCarryOver: decimal.Zero}
	policies[TypePersonal] = Policy{Type: TypePersonal, AccrualRate: decimal.RequireFromString("0.5"), MaxCarryOver: decimal.Zero}
	return policies
}

// For は t の Policy を返します。未登録なら付与なし・繰越なしです。
func (p Policies) For(t Type) Policy {
	if policy, ok := p[t]; ok {
		return policy
	}
	return Policy{Type: t, AccrualRate: decimal.Zero, MaxCarryOver: decimal.Zero}
}

// Accruing は月次付与対象の Policy を種別の定義順で返します。
func (p Policies) Accruing() []Policy {
	var out []Policy
	for _, t := range Types() {
		if policy := p.For(t); policy.Accrues() {
			out = append(out, policy)
		}
	}
	return out
}
