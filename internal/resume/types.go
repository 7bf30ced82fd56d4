package resume

// Data 表示 LLM 抽取出的简历结构化数据，extracted_data 与 customized_data 共用此结构。
type Data struct {
	Name       string       `json:"name"`
	Email      string       `json:"email"`
	Phone      string       `json:"phone"`
	Education  []Education  `json:"education"`
	Projects   []Project    `json:"projects"`
	Experience []Experience `json:"experience"`
	Skills     []string     `json:"skills"`
	OtherInfo  OtherInfo    `json:"other_info"`
}

// Education 描述一段教育经历。
type Education struct {
	Degree      string `json:"degree"`
	Institution string `json:"institution"`
	StartDate   string `json:"start_date"`
	EndDate     string `json:"end_date"`
	Grade       string `json:"grade"`
}

// Project 描述一个项目。
type Project struct {
	ProjectName  string   `json:"project_name"`
	Description  string   `json:"description"`
	Technologies []string `json:"technologies"`
	Link         string   `json:"link"`
}

// Experience 描述一段工作经历。
type Experience struct {
	JobTitle         string   `json:"job_title"`
	Company          string   `json:"company"`
	Location         string   `json:"location"`
	StartDate        string   `json:"start_date"`
	EndDate          string   `json:"end_date"`
	Responsibilities []string `json:"responsibilities"`
}

// OtherInfo 汇总证书、语言、成就与外部链接。
type OtherInfo struct {
	Certifications []string `json:"certifications"`
	Languages      []string `json:"languages"`
	Achievements   []string `json:"achievements"`
	Links          Links    `json:"links"`
}

// Links 个人主页链接。
type Links struct {
	LinkedIn  string `json:"linkedin"`
	GitHub    string `json:"github"`
	Portfolio string `json:"portfolio"`
}
