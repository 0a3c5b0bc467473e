package domain

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// LineNature is the accumulation direction of a statement line.
type LineNature int

const (
	// DebitNature lines grow when debited.
	DebitNature LineNature = iota
	// CreditNature lines grow when credited.
	CreditNature
)

// String implements fmt.Stringer.
func (n LineNature) String() string {
	if n == DebitNature {
		return "debit"
	}
	return "credit"
}

// FormulaTerm is one operand of a derived statement line.
type FormulaTerm struct {
	Line   string `json:"line"`
	Negate bool   `json:"negate,omitempty"`
}

// StatementLine is one named bucket of the yearly statement of comprehensive
// income. A line with a formula is derived from earlier lines; a line without
// one is a leaf accumulated directly from ledger entries.
type StatementLine struct {
	Code        string
	Description string
	Nature      LineNature
	Formula     []FormulaTerm
}

// IsFormula reports whether the line is derived rather than accumulated.
func (l StatementLine) IsFormula() bool {
	return len(l.Formula) > 0
}

// ComputedStatementEntry is the running value of one statement line.
type ComputedStatementEntry struct {
	Nature LineNature
	Value  decimal.Decimal
	set    bool
}

// Accumulate adds one entry to a leaf line. The amount counts positive when
// the entry direction agrees with the line nature and negative otherwise.
func (c *ComputedStatementEntry) Accumulate(amount decimal.Decimal, isDebit bool) {
	if isDebit == (c.Nature == DebitNature) {
		c.Value = c.Value.Add(amount)
	} else {
		c.Value = c.Value.Sub(amount)
	}
}

// Set assigns the value of a derived line. It is a one-shot operation.
func (c *ComputedStatementEntry) Set(value decimal.Decimal) {
	if c.set {
		return
	}
	c.Value = value
	c.set = true
}

// Taxonomy is the immutable per-job configuration mapping accounts into
// statement lines and counterparty roles. It is built once at job start and
// passed to every aggregator; nothing mutates it afterwards.
type Taxonomy struct {
	lines             []StatementLine
	lineIndex         map[string]int
	lineBySubCategory map[string]string
	roleBySubCategory map[string]CounterpartyRole
	debitCategories   map[string]struct{}
}

// TaxonomyConfig is the serializable form of a Taxonomy.
type TaxonomyConfig struct {
	Lines                 []StatementLineConfig `json:"lines"`
	LineBySubCategory     map[string]string     `json:"line_by_sub_category"`
	RoleBySubCategory     map[string]string     `json:"role_by_sub_category"`
	DebitNatureCategories []string              `json:"debit_nature_categories"`
}

// StatementLineConfig is the serializable form of a StatementLine.
type StatementLineConfig struct {
	Code        string        `json:"code"`
	Description string        `json:"description"`
	Nature      string        `json:"nature"`
	Formula     []FormulaTerm `json:"formula,omitempty"`
}

// NewTaxonomy validates a config and builds the immutable taxonomy.
// Formulas may only reference lines declared before them, which makes the
// dependency graph acyclic by construction; any forward or unknown reference
// fails fast here instead of silently reading an absent value later.
func NewTaxonomy(cfg TaxonomyConfig) (*Taxonomy, error) {
	if len(cfg.Lines) == 0 {
		return nil, ErrEmptyTaxonomy
	}

	t := &Taxonomy{
		lines:             make([]StatementLine, 0, len(cfg.Lines)),
		lineIndex:         make(map[string]int, len(cfg.Lines)),
		lineBySubCategory: make(map[string]string, len(cfg.LineBySubCategory)),
		roleBySubCategory: make(map[string]CounterpartyRole, len(cfg.RoleBySubCategory)),
		debitCategories:   make(map[string]struct{}, len(cfg.DebitNatureCategories)),
	}

	for i, lc := range cfg.Lines {
		if _, dup := t.lineIndex[lc.Code]; dup {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateLine, lc.Code)
		}

		nature := CreditNature
		if lc.Nature == "debit" {
			nature = DebitNature
		}

		line := StatementLine{
			Code:        lc.Code,
			Description: lc.Description,
			Nature:      nature,
			Formula:     lc.Formula,
		}

		for _, term := range line.Formula {
			pos, ok := t.lineIndex[term.Line]
			if !ok {
				return nil, fmt.Errorf("%w: %s -> %s", ErrUnknownFormulaTerm, lc.Code, term.Line)
			}
			if pos >= i {
				return nil, fmt.Errorf("%w: %s -> %s", ErrForwardReference, lc.Code, term.Line)
			}
		}

		t.lineIndex[lc.Code] = i
		t.lines = append(t.lines, line)
	}

	for sub, code := range cfg.LineBySubCategory {
		if _, ok := t.lineIndex[code]; !ok {
			return nil, fmt.Errorf("%w: sub-category %s -> %s", ErrUnknownFormulaTerm, sub, code)
		}
		t.lineBySubCategory[sub] = code
	}

	for sub, role := range cfg.RoleBySubCategory {
		r, err := ParseCounterpartyRole(role)
		if err != nil {
			return nil, fmt.Errorf("sub-category %s: %w", sub, err)
		}
		t.roleBySubCategory[sub] = r
	}

	for _, cat := range cfg.DebitNatureCategories {
		t.debitCategories[cat] = struct{}{}
	}

	return t, nil
}

// Lines returns the statement lines in declaration (evaluation) order.
func (t *Taxonomy) Lines() []StatementLine {
	return t.lines
}

// LineFor maps an account sub-category to its statement line, if any.
func (t *Taxonomy) LineFor(subCategory string) (StatementLine, bool) {
	code, ok := t.lineBySubCategory[subCategory]
	if !ok {
		return StatementLine{}, false
	}
	return t.lines[t.lineIndex[code]], true
}

// RoleFor maps an account sub-category to its counterparty role.
func (t *Taxonomy) RoleFor(subCategory string) CounterpartyRole {
	return t.roleBySubCategory[subCategory]
}

// DebitNatureCategory reports whether an account category has debit nature.
func (t *Taxonomy) DebitNatureCategory(category string) bool {
	_, ok := t.debitCategories[category]
	return ok
}
