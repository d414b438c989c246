package patterns

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/tinytelemetry/logscope/internal/model"
)

func records(messages ...string) []model.Record {
	out := make([]model.Record, len(messages))
	for i, m := range messages {
		out[i] = model.Record{Level: "INFO", Message: m}
	}
	return out
}

func TestSummarizeRanksByCount(t *testing.T) {
	t.Parallel()
	summary := Summarize(records(
		"User login ok",
		"Database connection failed",
		"User login ok",
		"User logout",
		"",
		"   ",
		"Database connection failed again",
	))

	wantFirst := []model.RankedCount{{Value: "User", Count: 3}, {Value: "Database", Count: 2}}
	if !reflect.DeepEqual(summary.TopFirstTokens, wantFirst) {
		t.Errorf("first tokens = %+v, want %+v", summary.TopFirstTokens, wantFirst)
	}
	wantPrefixes := []model.RankedCount{
		{Value: "User login ok", Count: 2},
		{Value: "Database connection failed", Count: 2},
		{Value: "User logout", Count: 1},
	}
	if !reflect.DeepEqual(summary.TopPrefixes, wantPrefixes) {
		t.Errorf("prefixes = %+v, want %+v", summary.TopPrefixes, wantPrefixes)
	}
	if summary.Templates != nil {
		t.Errorf("templates should be off by default, got %+v", summary.Templates)
	}
}

func TestSummarizeTieBreakIsFirstSeen(t *testing.T) {
	t.Parallel()
	msgs := []string{"g", "f", "e", "d", "c", "b", "a", "a", "b"}
	summary := Summarize(records(msgs...))
	var got []string
	for _, rc := range summary.TopFirstTokens {
		got = append(got, rc.Value)
	}
	want := []string{"b", "a", "g", "f", "e"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("ranking = %v, want %v", got, want)
	}

	for i := 0; i < 20; i++ {
		if again := Summarize(records(msgs...)); !reflect.DeepEqual(again, summary) {
			t.Fatalf("run %d differs: %+v vs %+v", i, again, summary)
		}
	}
}

func TestSummarizeNormalizesWhitespaceInPrefix(t *testing.T) {
	t.Parallel()
	summary := Summarize(records("  Cache   miss\tfor  key 42", "Cache miss for key 7"))
	if len(summary.TopPrefixes) != 1 || summary.TopPrefixes[0] != (model.RankedCount{Value: "Cache miss for", Count: 2}) {
		t.Errorf("prefixes = %+v", summary.TopPrefixes)
	}
}

func TestEngineTopN(t *testing.T) {
	t.Parallel()
	e := NewEngine(Config{TopN: 2})
	summary := e.Summarize(records("a", "b", "c", "c"))
	if len(summary.TopFirstTokens) != 2 || summary.TopFirstTokens[0].Value != "c" {
		t.Errorf("first tokens = %+v", summary.TopFirstTokens)
	}
}

func TestEngineTemplates(t *testing.T) {
	t.Parallel()
	e := NewEngine(Config{Templates: true})
	summary := e.Summarize(records(
		"Connection refused from 192.168.1.1",
		"Connection refused from 10.0.0.1",
		"Connection refused from 172.16.0.1",
		"",
	))
	if len(summary.Templates) == 0 {
		t.Fatal("expected at least one template")
	}
	total := 0
	for i, tc := range summary.Templates {
		total += tc.Count
		if i > 0 && tc.Count > summary.Templates[i-1].Count {
			t.Errorf("templates not sorted: %+v", summary.Templates)
		}
	}
	if total != 3 {
		t.Errorf("template counts sum to %d, want 3", total)
	}
}

func TestEngineTemplatesDirect(t *testing.T) {
	t.Parallel()
	e := NewEngine(Config{TopN: 1})
	templates, err := e.Templates(context.Background(), records(
		"user alice logged in",
		"user bob logged in",
		"disk full",
	))
	if err != nil {
		t.Fatalf("Templates: %v", err)
	}
	if len(templates) != 1 {
		t.Fatalf("templates = %+v, want 1 (TopN)", templates)
	}
	if templates[0].Count != 2 {
		t.Errorf("top template count = %d, want 2", templates[0].Count)
	}
}

func TestEngineTemplatesCancelled(t *testing.T) {
	t.Parallel()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := NewEngine().Templates(ctx, records("a b c")); !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
}
