// Package score turns a posting into a final fit score: a deterministic rule
// evaluation fused with a non-deterministic AI base judgment.
package score

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"text/template"

	"github.com/oppscout/oppscout/internal/config"
	"github.com/oppscout/oppscout/internal/model"
)

// NeutralBase is substituted when the judge call fails or its output carries
// no parseable score. The run continues; the substitution is noted in the
// rationale and counted by the driver.
const NeutralBase = 70

// Scorer fuses the rule evaluator's adjustments with the judge's base score.
type Scorer struct {
	rules   *Rules
	judge   model.Judge
	profile config.ProfileConfig
	tmpl    *template.Template
	logger  *slog.Logger
}

// New creates a Scorer. The profile is fixed for the scorer's lifetime; one
// run scores every posting against the same candidate.
func New(rules *Rules, judge model.Judge, profile config.ProfileConfig, logger *slog.Logger) *Scorer {
	return &Scorer{
		rules:   rules,
		judge:   judge,
		profile: profile,
		tmpl:    FitPromptTemplate,
		logger:  logger,
	}
}

// promptData is the template input for one judge call.
type promptData struct {
	Profile     config.ProfileConfig
	Posting     model.Posting
	LocationAdj int
	CompanyAdj  int
}

// Score evaluates one posting. Both computations run regardless of judge
// outcome: the adjustments are always the rule evaluator's, never the
// judge's, so only the base score varies run to run for the same input.
// Score never fails; every error path degrades to the neutral base.
func (s *Scorer) Score(ctx context.Context, p model.Posting) model.ScoreResult {
	locAdj := s.rules.LocationWeight(p.Location)
	compAdj := s.rules.CompanyBonus(p.Company)

	res := model.ScoreResult{
		LocationAdj: locAdj,
		CompanyAdj:  compAdj,
	}

	judgment, err := s.runJudge(ctx, p, locAdj, compAdj)
	if err != nil {
		s.logger.Warn("judge unavailable, using neutral base score",
			"company", p.Company,
			"title", p.Title,
			"error", err,
		)
		res.Base = NeutralBase
		res.Fallback = true
		res.Rationale = fmt.Sprintf("judgment fallback: %v; neutral base score %d substituted", err, NeutralBase)
	} else {
		res.Base = judgment.Score
		res.Rationale = judgment.Text
	}

	res.Final = clamp(res.Base+locAdj+compAdj, 0, 100)
	res.Rationale += fmt.Sprintf(
		"\n[score breakdown: base %d, location %+d, company %+d, final %d]",
		res.Base, locAdj, compAdj, res.Final,
	)

	return res
}

func (s *Scorer) runJudge(ctx context.Context, p model.Posting, locAdj, compAdj int) (model.Judgment, error) {
	var promptBuf bytes.Buffer
	err := s.tmpl.Execute(&promptBuf, promptData{
		Profile:     s.profile,
		Posting:     p,
		LocationAdj: locAdj,
		CompanyAdj:  compAdj,
	})
	if err != nil {
		return model.Judgment{}, fmt.Errorf("render prompt: %w", err)
	}

	return s.judge.Judge(ctx, promptBuf.String())
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
