package paye

// Bonus is the marginal effect of a one-off bonus on top of regular salary
type Bonus struct {
	BaseGross   float64 `json:"base_gross"`
	BonusAmount float64 `json:"bonus_amount"`
	BonusTax    float64 `json:"bonus_tax"`
	NetBonus    float64 `json:"net_bonus"`
	BonusRate   float64 `json:"bonus_rate"` // BonusTax / BonusAmount, 0 for a zero bonus
	Base        Result  `json:"base"`
	WithBonus   Result  `json:"with_bonus"`
}

// BonusImpact differences two full payroll runs, with and without the bonus,
// so a bonus that crosses into a higher band is taxed at the blended rate
// rather than a single marginal rate
func (c *Calculator) BonusImpact(baseGross, bonusAmount float64, e Elections) (Bonus, error) {
	if err := validateAmount("base_gross", baseGross); err != nil {
		return Bonus{}, err
	}
	if err := validateAmount("bonus_amount", bonusAmount); err != nil {
		return Bonus{}, err
	}
	if err := c.Validate(e); err != nil {
		return Bonus{}, err
	}

	base, err := c.calculate(baseGross, e)
	if err != nil {
		return Bonus{}, err
	}
	withBonus, err := c.calculate(baseGross+bonusAmount, e)
	if err != nil {
		return Bonus{}, err
	}

	bonusTax := withBonus.PAYE - base.PAYE
	return Bonus{
		BaseGross:   baseGross,
		BonusAmount: bonusAmount,
		BonusTax:    bonusTax,
		NetBonus:    bonusAmount - bonusTax,
		BonusRate:   ratio(bonusTax, bonusAmount),
		Base:        base,
		WithBonus:   withBonus,
	}, nil
}
