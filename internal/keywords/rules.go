package keywords

import "strings"

// rule maps a canonical term to its known textual variants within one field
// namespace. Rules are applied before similarity clustering and always win
// over it. Order matters: earlier rules take precedence when a keyword could
// match more than one.
type rule struct {
	canonical string
	variants  []string
}

// specialRules holds the fixed per-namespace override tables. A keyword that
// exactly matches a canonical term, appears in its variant list, or shares a
// substring relationship with any variant or the canonical term itself is
// rewritten to the canonical term.
var specialRules = map[string][]rule{
	"location": {
		{"中国", []string{"中国大陆", "中国", "中国内地", "内地"}},
		{"美国", []string{"美国", "USA", "United States"}},
		{"英国", []string{"英国", "UK", "United Kingdom"}},
		{"全球", []string{"全球", "国际", "世界", "全世界"}},
	},
	"political_stance": {
		{"官方", []string{"官方立场", "官方", "政府立场", "官方媒体"}},
		{"中立", []string{"中立", "中立立场", "中间立场", "中性"}},
		{"左倾", []string{"左倾", "左翼", "进步主义"}},
		{"右倾", []string{"右倾", "右翼", "保守主义"}},
		{"自由主义", []string{"自由主义", "自由派", "自由市场"}},
	},
	"ownership": {
		{"国有", []string{"国有", "国有企业", "国有控股", "公有制", "政府所有"}},
		{"民营", []string{"民营", "民营企业", "私营", "私营企业", "私人所有"}},
		{"外资", []string{"外资", "外资控股", "外国资本"}},
		{"混合", []string{"混合所有制", "混合", "多元"}},
	},
	"category": {
		{"新闻媒体", []string{"新闻媒体", "新闻机构", "新闻门户", "新闻网站"}},
		{"科技媒体", []string{"科技媒体", "科技博客", "科技资讯", "科技门户"}},
		{"财经媒体", []string{"财经媒体", "财经门户", "财经网站", "财经新闻"}},
	},
}

// applyRules rewrites each keyword to its rule-canonical form. Keywords in
// namespaces without rules, or without a matching rule, pass through
// unchanged.
func applyRules(namespace string, kws []string) []string {
	rules, ok := specialRules[namespace]
	if !ok {
		return kws
	}

	result := make([]string, 0, len(kws))
	for _, keyword := range kws {
		result = append(result, ruleCanonical(rules, keyword))
	}
	return result
}

func ruleCanonical(rules []rule, keyword string) string {
	// Exact and variant matches beat substring matches regardless of rule
	// order, so scan in two passes.
	for _, r := range rules {
		if keyword == r.canonical {
			return r.canonical
		}
		for _, variant := range r.variants {
			if keyword == variant {
				return r.canonical
			}
		}
	}
	for _, r := range rules {
		for _, candidate := range append(r.variants, r.canonical) {
			if strings.Contains(keyword, candidate) || strings.Contains(candidate, keyword) {
				return r.canonical
			}
		}
	}
	return keyword
}
