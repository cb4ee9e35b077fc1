package classify

import "github.com/nikbrunner/tidymark/internal/model"

// DefaultRules returns the built-in rule set for lang. It is used when the
// settings carry no rules of their own.
func DefaultRules(lang model.Language) []model.Rule {
	if lang == model.LanguageZh {
		return cloneRules(zhRules)
	}
	return cloneRules(enRules)
}

var enRules = []model.Rule{
	{Category: "Development", Keywords: []string{"github", "gitlab", "stackoverflow", "developer", "docs", "api", "npm", "golang", "python", "javascript", "rust", "programming", "code"}},
	{Category: "AI", Keywords: []string{"openai", "chatgpt", "claude", "anthropic", "huggingface", "gemini", "llm", "machine learning", "deepseek"}},
	{Category: "Design", Keywords: []string{"figma", "dribbble", "behance", "design", "icon", "font", "color"}},
	{Category: "News", Keywords: []string{"news", "ycombinator", "techcrunch", "theverge", "bbc", "reuters", "nytimes"}},
	{Category: "Social", Keywords: []string{"twitter", "x.com", "facebook", "reddit", "linkedin", "instagram", "mastodon", "discord"}},
	{Category: "Video", Keywords: []string{"youtube", "vimeo", "twitch", "netflix", "bilibili"}},
	{Category: "Shopping", Keywords: []string{"amazon", "ebay", "shop", "store", "aliexpress", "etsy"}},
	{Category: "Learning", Keywords: []string{"course", "tutorial", "coursera", "udemy", "edx", "wikipedia", "learn"}},
	{Category: "Tools", Keywords: []string{"tool", "converter", "generator", "translate", "calculator"}},
	{Category: "Cloud", Keywords: []string{"aws", "azure", "cloud", "vercel", "netlify", "cloudflare", "digitalocean"}},
}

var zhRules = []model.Rule{
	{Category: "开发", Keywords: []string{"github", "gitlab", "stackoverflow", "csdn", "juejin", "掘金", "开发", "编程", "文档", "docs", "api", "golang", "python", "javascript"}},
	{Category: "人工智能", Keywords: []string{"openai", "chatgpt", "claude", "deepseek", "kimi", "文心", "通义", "huggingface", "人工智能", "大模型"}},
	{Category: "设计", Keywords: []string{"figma", "dribbble", "behance", "站酷", "zcool", "设计", "图标", "字体"}},
	{Category: "新闻", Keywords: []string{"news", "新闻", "36kr", "sina", "163.com", "qq.com", "thepaper", "资讯"}},
	{Category: "社交", Keywords: []string{"weibo", "微博", "zhihu", "知乎", "douban", "豆瓣", "twitter", "reddit", "小红书"}},
	{Category: "视频", Keywords: []string{"bilibili", "youtube", "youku", "iqiyi", "爱奇艺", "douyin", "抖音", "视频"}},
	{Category: "购物", Keywords: []string{"taobao", "淘宝", "jd.com", "京东", "tmall", "天猫", "pinduoduo", "amazon", "购物"}},
	{Category: "学习", Keywords: []string{"教程", "课程", "学习", "mooc", "coursera", "wikipedia", "百科"}},
	{Category: "工具", Keywords: []string{"工具", "tool", "转换", "在线", "翻译", "translate"}},
	{Category: "云服务", Keywords: []string{"aliyun", "阿里云", "tencentcloud", "腾讯云", "aws", "azure", "cloudflare", "vercel"}},
}

func cloneRules(in []model.Rule) []model.Rule {
	out := make([]model.Rule, len(in))
	for i, r := range in {
		out[i] = model.Rule{Category: r.Category, Keywords: append([]string(nil), r.Keywords...)}
	}
	return out
}
