package content

// SocialLink 表示 About 区块中的外链（JSONB 存储）。
// 同一 type 允许出现多条，不做唯一性约束。
type SocialLink struct {
	Type  string `json:"type"`
	Label string `json:"label"`
	URL   string `json:"url"`
}

// Skill 表示分类下的单项技能。ID 在加入分类时生成，仅在父分类内有意义。
type Skill struct {
	ID               string `json:"id"`
	Label            string `json:"label"`
	Level            string `json:"level"`
	Icon             string `json:"icon,omitempty"`
	ShowInHighlights bool   `json:"showInHighlights"`
}

// ProjectSection 表示项目详情中的一个小节。
type ProjectSection struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

// GalleryImage 表示项目详情画廊中的一张图片。
type GalleryImage struct {
	URL     string `json:"url"`
	Caption string `json:"caption,omitempty"`
}

// ProjectDetail 表示项目的可选富文本详情（JSONB 存储）。
type ProjectDetail struct {
	MarkdownContent string           `json:"markdownContent"`
	Sections        []ProjectSection `json:"sections,omitempty"`
	GalleryImages   []GalleryImage   `json:"galleryImages"`
	DemoVideoURL    string           `json:"demoVideoUrl,omitempty"`
}

// 各枚举字段的合法取值。
var (
	SocialLinkTypes = []string{"github", "linkedin", "twitter", "email", "website"}
	SkillLevels     = []string{"Beginner", "Intermediate", "Advanced", "Expert"}
	ProjectTypes    = []string{"personal", "freelance", "internship", "client work"}
	EmploymentTypes = []string{"full-time", "part-time", "internship", "freelance"}
)

// DefaultSkillLevel 是未指定等级时的默认值。
const DefaultSkillLevel = "Intermediate"

func contains(values []string, v string) bool {
	for _, candidate := range values {
		if candidate == v {
			return true
		}
	}
	return false
}

// ValidSocialLinkType 判断外链类型是否合法。
func ValidSocialLinkType(v string) bool { return contains(SocialLinkTypes, v) }

// ValidSkillLevel 判断技能等级是否合法。
func ValidSkillLevel(v string) bool { return contains(SkillLevels, v) }

// ValidProjectType 判断项目类型是否合法。
func ValidProjectType(v string) bool { return contains(ProjectTypes, v) }

// ValidEmploymentType 判断雇佣类型是否合法。
func ValidEmploymentType(v string) bool { return contains(EmploymentTypes, v) }
