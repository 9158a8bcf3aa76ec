package skills

// synonyms maps a canonical skill to the spellings found in resumes and job
// posts. Ordered so text extraction is deterministic.
var synonyms = []struct {
	canonical string
	variants  []string
}{
	{"javascript", []string{"javascript", "js", "ecmascript", "java script"}},
	{"python", []string{"python", "py", "python3"}},
	{"react", []string{"react", "reactjs", "react.js"}},
	{"angular", []string{"angular", "angularjs", "angular.js"}},
	{"vue", []string{"vue", "vuejs", "vue.js"}},
	{"node", []string{"node", "nodejs", "node.js"}},
	{"typescript", []string{"typescript", "ts"}},
	{"css", []string{"css", "css3", "cascading style sheets"}},
	{"html", []string{"html", "html5", "hypertext markup language"}},
	{"sql", []string{"sql", "mysql", "postgresql", "sqlite"}},
	{"aws", []string{"aws", "amazon web services"}},
	{"docker", []string{"docker", "containerization"}},
	{"kubernetes", []string{"kubernetes", "k8s"}},
	{"git", []string{"git", "github", "gitlab", "version control"}},
	{"java", []string{"java", "openjdk"}},
	{"c++", []string{"c++", "cpp", "c plus plus"}},
	{"c#", []string{"c#", "csharp", "c sharp"}},
	{"php", []string{"php", "php7", "php8"}},
	{"ruby", []string{"ruby", "ruby on rails", "rails"}},
	{"go", []string{"go", "golang"}},
	{"rust", []string{"rust", "rust-lang"}},
	{"swift", []string{"swift", "ios"}},
	{"kotlin", []string{"kotlin", "android"}},
	{"scala", []string{"scala"}},
	{"r", []string{"r", "r-lang", "r programming"}},
	{"matlab", []string{"matlab"}},
	{"tensorflow", []string{"tensorflow", "tf"}},
	{"pytorch", []string{"pytorch", "torch"}},
	{"pandas", []string{"pandas", "pd"}},
	{"numpy", []string{"numpy", "np"}},
	{"scikit-learn", []string{"scikit-learn", "sklearn", "scikit learn"}},
	{"mongodb", []string{"mongodb", "mongo"}},
	{"redis", []string{"redis"}},
	{"elasticsearch", []string{"elasticsearch", "elastic search"}},
	{"jenkins", []string{"jenkins", "ci/cd"}},
	{"terraform", []string{"terraform", "infrastructure as code"}},
	{"ansible", []string{"ansible", "automation"}},
	{"linux", []string{"linux", "unix"}},
	{"windows", []string{"windows", "microsoft windows"}},
	{"macos", []string{"macos", "mac os", "osx"}},
}

var categories = map[string][]string{
	"frontend":     {"react", "angular", "vue", "javascript", "typescript", "html", "css", "sass", "less"},
	"backend":      {"python", "java", "node", "php", "ruby", "go", "c#", "scala"},
	"database":     {"sql", "mongodb", "redis", "postgresql", "mysql", "elasticsearch"},
	"cloud":        {"aws", "azure", "gcp", "docker", "kubernetes"},
	"mobile":       {"swift", "kotlin", "react native", "flutter"},
	"data_science": {"python", "r", "pandas", "numpy", "tensorflow", "pytorch", "scikit-learn"},
	"devops":       {"docker", "kubernetes", "jenkins", "terraform", "ansible", "git"},
}
