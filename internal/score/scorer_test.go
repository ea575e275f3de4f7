package score

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/oppscout/oppscout/internal/config"
	"github.com/oppscout/oppscout/internal/model"
)

// mockJudge returns a canned judgment or error.
type mockJudge struct {
	judgment model.Judgment
	err      error
	prompts  []string
}

func (m *mockJudge) Judge(_ context.Context, prompt string) (model.Judgment, error) {
	m.prompts = append(m.prompts, prompt)
	return m.judgment, m.err
}

func testProfile() config.ProfileConfig {
	return config.ProfileConfig{
		TitleKeywords:   []string{"senior product manager"},
		Industries:      []string{"consumer tech"},
		ExperienceLevel: "senior",
		Background:      "MBA, 8+ years experience",
		Avoid:           []string{"traditional finance"},
	}
}

func newTestScorer(judge model.Judge) *Scorer {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return New(testRules(), judge, testProfile(), logger)
}

func TestScoreFusesBaseAndAdjustments(t *testing.T) {
	// Scenario: remote location (+15), company not on the target list,
	// judge returns base 60 -> final 75.
	judge := &mockJudge{judgment: model.Judgment{Score: 60, Text: "Score: 60\nStrong fit."}}
	s := newTestScorer(judge)

	res := s.Score(context.Background(), model.Posting{
		Title:    "Senior Product Manager",
		Company:  "Acme",
		Location: "Remote",
	})

	if res.Base != 60 {
		t.Errorf("base = %d, want 60", res.Base)
	}
	if res.LocationAdj != 15 {
		t.Errorf("location adj = %d, want 15", res.LocationAdj)
	}
	if res.CompanyAdj != 0 {
		t.Errorf("company adj = %d, want 0", res.CompanyAdj)
	}
	if res.Final != 75 {
		t.Errorf("final = %d, want 75", res.Final)
	}
	if res.Fallback {
		t.Error("fallback flag set on a successful judgment")
	}
	if !strings.Contains(res.Rationale, "base 60, location +15, company +0, final 75") {
		t.Errorf("rationale missing breakdown suffix: %q", res.Rationale)
	}
}

func TestScoreFallsBackOnJudgeError(t *testing.T) {
	// Scenario: same posting, judge call fails -> neutral base 70, final 85.
	judge := &mockJudge{err: errors.New("network error")}
	s := newTestScorer(judge)

	res := s.Score(context.Background(), model.Posting{
		Title:    "Senior Product Manager",
		Company:  "Acme",
		Location: "Remote",
	})

	if res.Base != NeutralBase {
		t.Errorf("base = %d, want neutral %d", res.Base, NeutralBase)
	}
	if res.Final != 85 {
		t.Errorf("final = %d, want 85", res.Final)
	}
	if !res.Fallback {
		t.Error("fallback flag not set")
	}
	if !strings.Contains(res.Rationale, "fallback") {
		t.Errorf("rationale missing fallback marker: %q", res.Rationale)
	}
}

func TestScoreFallsBackOnUnparseableOutput(t *testing.T) {
	judge := &mockJudge{err: model.ErrUnparseable}
	s := newTestScorer(judge)

	res := s.Score(context.Background(), model.Posting{
		Title: "PM", Company: "Acme", Location: "Austin",
	})
	if res.Base != NeutralBase || !res.Fallback {
		t.Errorf("got base %d fallback %v, want neutral fallback", res.Base, res.Fallback)
	}
}

func TestScoreClampingLaw(t *testing.T) {
	tests := []struct {
		name     string
		base     int
		location string
		company  string
		want     int
	}{
		{"clamped high", 95, "Remote", "Stripe", 100},      // 95+15+10 = 120
		{"clamped low", 0, "London", "Acme", 0},
		{"negative base clamped", -20, "London", "Acme", 0},
		{"in range untouched", 50, "Seattle", "Acme", 60},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			judge := &mockJudge{judgment: model.Judgment{Score: tt.base, Text: "Score"}}
			s := newTestScorer(judge)

			res := s.Score(context.Background(), model.Posting{
				Title: "PM", Company: tt.company, Location: tt.location,
			})
			if res.Final != tt.want {
				t.Errorf("final = %d, want %d", res.Final, tt.want)
			}
			if res.Final < 0 || res.Final > 100 {
				t.Errorf("final %d outside [0,100]", res.Final)
			}
		})
	}
}

func TestScorePromptCarriesAdjustments(t *testing.T) {
	// The judge is informed of the computed adjustments but told not to
	// apply them.
	judge := &mockJudge{judgment: model.Judgment{Score: 50, Text: "Score: 50"}}
	s := newTestScorer(judge)

	s.Score(context.Background(), model.Posting{
		Title: "PM", Company: "Stripe", Location: "Remote",
	})

	if len(judge.prompts) != 1 {
		t.Fatalf("judge called %d times, want 1", len(judge.prompts))
	}
	prompt := judge.prompts[0]
	if !strings.Contains(prompt, "+15") || !strings.Contains(prompt, "+10") {
		t.Errorf("prompt missing adjustments:\n%s", prompt)
	}
	if !strings.Contains(prompt, "MBA, 8+ years experience") {
		t.Errorf("prompt missing profile background:\n%s", prompt)
	}
	if !strings.Contains(prompt, "Stripe") {
		t.Errorf("prompt missing posting fields:\n%s", prompt)
	}
}

func TestParseJudgment(t *testing.T) {
	tests := []struct {
		name    string
		text    string
		want    int
		wantErr bool
	}{
		{"colon form", "Score: 85\nGreat fit.", 85, false},
		{"lowercase prose", "I'd give this a score of 72 overall.", 72, false},
		{"markdown", "**Score** - 64", 64, false},
		{"slash hundred", "score is 90/100", 90, false},
		{"no marker", "This looks like a strong fit overall.", 0, true},
		{"number without marker", "Rated 88 out of 100.", 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			j, err := ParseJudgment(tt.text)
			if tt.wantErr {
				if !errors.Is(err, model.ErrUnparseable) {
					t.Fatalf("err = %v, want ErrUnparseable", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseJudgment: %v", err)
			}
			if j.Score != tt.want {
				t.Errorf("score = %d, want %d", j.Score, tt.want)
			}
			if j.Text != tt.text {
				t.Errorf("text not preserved")
			}
		})
	}
}
