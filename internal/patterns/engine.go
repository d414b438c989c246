// Package patterns finds recurring message shapes: leading tokens,
// three-token prefixes and, optionally, drain3 message templates.
package patterns

import (
	"context"
	"sort"
	"strings"

	"github.com/jaeyo/go-drain3/pkg/drain3"
	"go.uber.org/zap"

	"github.com/tinytelemetry/logscope/internal/model"
)

// PrefixTokens is how many leading message tokens form a prefix.
const PrefixTokens = 3

// Config holds tunable parameters for the pattern engine.
type Config struct {
	TopN      int  // entries kept per ranking, default model.DefaultTopN
	Templates bool // mine drain3 templates in addition to token rankings
	Logger    *zap.Logger
}

// Engine summarizes record messages. It holds no state between calls.
type Engine struct {
	topN      int
	templates bool
	logger    *zap.Logger
}

// NewEngine creates a pattern engine.
func NewEngine(conf ...Config) *Engine {
	e := &Engine{topN: model.DefaultTopN, logger: zap.NewNop()}
	if len(conf) > 0 {
		if conf[0].TopN > 0 {
			e.topN = conf[0].TopN
		}
		e.templates = conf[0].Templates
		if conf[0].Logger != nil {
			e.logger = conf[0].Logger
		}
	}
	return e
}

// Summarize ranks first tokens and prefixes with the default engine.
func Summarize(records []model.Record) model.PatternSummary {
	return NewEngine().Summarize(records)
}

// Summarize ranks the first token and the first PrefixTokens tokens of each
// message. Empty messages contribute nothing.
func (e *Engine) Summarize(records []model.Record) model.PatternSummary {
	firstTokens := newRankedCounter()
	prefixes := newRankedCounter()

	for _, r := range records {
		fields := strings.Fields(r.Message)
		if len(fields) == 0 {
			continue
		}
		firstTokens.add(fields[0])
		n := len(fields)
		if n > PrefixTokens {
			n = PrefixTokens
		}
		prefixes.add(strings.Join(fields[:n], " "))
	}

	summary := model.PatternSummary{
		TopFirstTokens: firstTokens.top(e.topN),
		TopPrefixes:    prefixes.top(e.topN),
	}
	if e.templates {
		templates, err := e.Templates(context.Background(), records)
		if err != nil {
			e.logger.Warn("patterns: template mining failed", zap.Error(err))
		} else {
			summary.Templates = templates
		}
	}
	return summary
}

// Templates clusters messages with drain3 and returns the largest clusters,
// ties in order of first appearance.
func (e *Engine) Templates(ctx context.Context, records []model.Record) ([]model.TemplateCount, error) {
	miner, err := drain3.NewDrain()
	if err != nil {
		return nil, err
	}

	type clusterCount struct {
		cluster *drain3.LogCluster
		count   int
	}
	var order []*clusterCount
	index := make(map[*drain3.LogCluster]*clusterCount)

	for _, r := range records {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		msg := strings.TrimSpace(r.Message)
		if msg == "" {
			continue
		}
		cluster, _, err := miner.AddLogMessage(msg)
		if err != nil {
			return nil, err
		}
		if cluster == nil {
			continue
		}
		cc, ok := index[cluster]
		if !ok {
			cc = &clusterCount{cluster: cluster}
			index[cluster] = cc
			order = append(order, cc)
		}
		cc.count++
	}

	sort.SliceStable(order, func(i, j int) bool { return order[i].count > order[j].count })
	if len(order) > e.topN {
		order = order[:e.topN]
	}

	templates := make([]model.TemplateCount, 0, len(order))
	for _, cc := range order {
		templates = append(templates, model.TemplateCount{
			Template: cc.cluster.GetTemplate(),
			Count:    cc.count,
		})
	}
	return templates, nil
}
