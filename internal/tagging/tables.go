package tagging

type domainTags struct {
	Domain string
	Tags   []string
}

// Matched in order; the first domain contained in the URL host wins.
var weightedDomains = []domainTags{
	{"youtube.com", []string{"Video", "YT", "YouTube"}},
	{"youtu.be", []string{"Video", "YT", "YouTube"}},
	{"github.com", []string{"Code", "GitHub", "Dev"}},
	{"stackoverflow.com", []string{"Programming", "QA"}},
	{"medium.com", []string{"Article", "Blog"}},
	{"twitter.com", []string{"Social", "Twitter"}},
	{"x.com", []string{"Social", "Twitter"}},
	{"reddit.com", []string{"Discussion", "Reddit"}},
	{"wikipedia.org", []string{"Reference", "Wiki"}},
	{"arxiv.org", []string{"Research", "Paper", "Academic"}},
	{"news.ycombinator.com", []string{"Tech", "News"}},
	{"dev.to", []string{"Development", "Blog"}},
	{"linkedin.com", []string{"Professional", "Network"}},
	{"instagram.com", []string{"Social", "Photo"}},
	{"tiktok.com", []string{"Video", "Social"}},
	{"spotify.com", []string{"Music", "Audio"}},
	{"soundcloud.com", []string{"Music", "Audio"}},
}

// High-value keywords, lower-cased, mapped to their display tag.
var priorityKeywords = map[string]string{
	"python": "Python", "javascript": "JavaScript", "java": "Java",
	"typescript": "TypeScript", "rust": "Rust", "go": "Go", "golang": "Go",
	"cpp": "CPP", "csharp": "CSharp", "ruby": "Ruby", "php": "PHP",
	"swift": "Swift", "kotlin": "Kotlin", "scala": "Scala",

	"react": "React", "vue": "Vue", "angular": "Angular", "svelte": "Svelte",
	"nextjs": "NextJS", "django": "Django", "flask": "Flask", "fastapi": "FastAPI",
	"express": "Express", "nestjs": "NestJS", "spring": "Spring",

	"docker": "Docker", "kubernetes": "K8s", "aws": "AWS", "azure": "Azure",
	"gcp": "GCP", "cloud": "Cloud", "devops": "DevOps", "cicd": "CICD",
	"terraform": "Terraform", "ansible": "Ansible",

	"ai": "AI", "ml": "ML", "machinelearning": "MachineLearning",
	"deeplearning": "DeepLearning", "neuralnetwork": "NeuralNetwork",
	"tensorflow": "TensorFlow", "pytorch": "PyTorch", "llm": "LLM",
	"gpt": "GPT", "chatgpt": "ChatGPT", "openai": "OpenAI",

	"blockchain": "Blockchain", "crypto": "Crypto", "bitcoin": "Bitcoin",
	"ethereum": "Ethereum", "web3": "Web3", "nft": "NFT", "defi": "DeFi",

	"database": "Database", "sql": "SQL", "nosql": "NoSQL", "mongodb": "MongoDB",
	"postgresql": "PostgreSQL", "mysql": "MySQL", "redis": "Redis",

	"api": "API", "rest": "REST", "graphql": "GraphQL", "websocket": "WebSocket",
	"frontend": "Frontend", "backend": "Backend", "fullstack": "FullStack",
	"mobile": "Mobile", "ios": "iOS", "android": "Android",

	"tutorial": "Tutorial", "guide": "Guide", "course": "Course",
	"documentation": "Docs", "review": "Review", "news": "News",
	"interview": "Interview", "podcast": "Podcast", "webinar": "Webinar",
}

type category struct {
	Name  string
	Rules []Rule
}

// Checked in order; the first category with a matching keyword wins.
var categories = []category{
	{"Gaming", containsRules("Gaming", "game", "gaming", "gamer", "gameplay", "esports", "streamer")},
	{"Music", containsRules("Music", "music", "song", "album", "artist", "band", "concert", "audio")},
	{"Education", containsRules("Education", "learn", "tutorial", "course", "education", "teaching", "study")},
	{"Business", containsRules("Business", "business", "startup", "entrepreneur", "marketing", "sales")},
	{"Health", containsRules("Health", "health", "fitness", "workout", "nutrition", "wellness", "medical")},
	{"Science", containsRules("Science", "science", "research", "study", "experiment", "discovery")},
	{"Entertainment", containsRules("Entertainment", "movie", "film", "show", "series", "entertainment", "comedy")},
	{"News", containsRules("News", "news", "breaking", "update", "report", "announcement")},
	{"Sports", containsRules("Sports", "sports", "football", "basketball", "soccer", "cricket", "athlete")},
}

var mediaTags = map[string]string{
	"photo":     "Image",
	"video":     "Video",
	"audio":     "Audio",
	"voice":     "Voice",
	"document":  "Document",
	"animation": "GIF",
	"sticker":   "Sticker",
}

var stopWords = toSet(
	"the", "a", "an", "and", "or", "but", "in", "on", "at", "to", "for",
	"of", "with", "by", "from", "as", "is", "was", "are", "were", "been",
	"be", "have", "has", "had", "do", "does", "did", "will", "would", "should",
	"could", "may", "might", "must", "can", "this", "that", "these", "those",
	"i", "you", "he", "she", "it", "we", "they", "what", "which", "who",
	"when", "where", "why", "how", "all", "each", "every", "both", "few",
	"more", "most", "other", "some", "such", "no", "nor", "not", "only",
	"own", "same", "so", "than", "too", "very", "just", "about", "into",
	"through", "during", "before", "after", "above", "below", "between",
	"under", "again", "further", "then", "once", "here", "there", "also",
	"available", "description", "content", "title", "link", "url",
)

// Tables of the simple strategy. Tags are already lower-case hashtags.
var simpleDomains = []domainTags{
	{"youtube.com", []string{"#video"}},
	{"youtu.be", []string{"#video"}},
	{"vimeo.com", []string{"#video"}},
	{"tiktok.com", []string{"#video"}},
	{"instagram.com", []string{"#social"}},
	{"twitter.com", []string{"#social"}},
	{"x.com", []string{"#social"}},
	{"medium.com", []string{"#article"}},
	{"dev.to", []string{"#article"}},
	{"github.com", []string{"#code"}},
	{"stackoverflow.com", []string{"#qa"}},
	{"reddit.com", []string{"#discussion"}},
}

var simpleKeywords = concatRules(
	containsRules("#docker", "docker"),
	containsRules("#k8s", "kubernetes"),
	containsRules("#cloud", "aws"),
	containsRules("#python", "python"),
	containsRules("#javascript", "javascript"),
	containsRules("#react", "react"),
	containsRules("#ai", "ai"),
	containsRules("#ml", "ml"),
	containsRules("#database", "database"),
	containsRules("#api", "api"),
	containsRules("#security", "security"),
)

func concatRules(groups ...[]Rule) []Rule {
	var out []Rule
	for _, g := range groups {
		out = append(out, g...)
	}
	return out
}

func toSet(words ...string) map[string]bool {
	m := make(map[string]bool, len(words))
	for _, w := range words {
		m[w] = true
	}
	return m
}
