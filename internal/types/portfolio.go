// Package types provides type definitions for the portfolio data document served by the API.
package types

// Section names the top-level slices of the data document, in page order.
type Section string

// Document sections
const (
	SectionHero               Section = "hero"
	SectionSkills             Section = "skills"
	SectionExperience         Section = "experience"
	SectionEducation          Section = "education"
	SectionContinuousLearning Section = "continuousLearning"
	SectionProjects           Section = "projects"
	SectionTestimonials       Section = "testimonials"
	SectionContact            Section = "contact"
	SectionContactForm        Section = "contactForm"
)

// SectionOrder is the order in which the page composes its sections.
var SectionOrder = []Section{
	SectionHero,
	SectionSkills,
	SectionExperience,
	SectionEducation,
	SectionProjects,
	SectionTestimonials,
	SectionContact,
}

// Document is the aggregated portfolio data rendered by the site.
type Document struct {
	Hero               Hero              `json:"hero"`
	Skills             SkillsData        `json:"skills"`
	Experience         []ExperienceItem  `json:"experience"`
	Education          []EducationItem   `json:"education"`
	ContinuousLearning []LearningItem    `json:"continuousLearning"`
	Projects           []ProjectItem     `json:"projects"`
	Contact            ContactData       `json:"contact"`
	ContactForm        ContactFormConfig `json:"contactForm"`
	Testimonials       []TestimonialItem `json:"testimonials"`
}

// Hero holds the introduction block at the top of the page.
type Hero struct {
	Name                   string   `json:"name"`
	NameWords              []string `json:"nameWords"`
	Designation            string   `json:"designation"`
	Summary                string   `json:"summary"`
	YearsOfExperience      int      `json:"yearsOfExperience"`
	ProjectsCompleted      int      `json:"projectsCompleted"`
	ClientSatisfactionRate int      `json:"clientSatisfactionRate"`
	ResumeLink             string   `json:"resumeLink"`
	ProfileImage           string   `json:"profileImage"`
	TechnicalSkills        []string `json:"technicalSkills"`
	AvailabilityStatus     string   `json:"availabilityStatus"`
}

// SkillCategory groups skills under a titled, colored card.
type SkillCategory struct {
	Title        string   `json:"title"`
	Skills       []string `json:"skills"`
	ColorScheme  string   `json:"colorScheme"` // primary, secondary, accent
	GradientFrom string   `json:"gradientFrom"`
	GradientTo   string   `json:"gradientTo"`
}

// SkillHighlight is a short strength statement with an icon name.
type SkillHighlight struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Icon        string `json:"icon"`
}

// SkillsData is the skills section.
type SkillsData struct {
	Categories []SkillCategory  `json:"categories"`
	Highlights []SkillHighlight `json:"highlights"`
}

// CareerProgression is one role held within a company.
type CareerProgression struct {
	Title     string `json:"title"`
	StartDate string `json:"startDate"`
	EndDate   string `json:"endDate"`
}

// ExperienceItem is one employer. CareerProgression is ordered latest first.
type ExperienceItem struct {
	Company           string              `json:"company"`
	Location          string              `json:"location"`
	CurrentlyWorking  bool                `json:"currentlyWorking"`
	StartDate         string              `json:"startDate"`
	CareerProgression []CareerProgression `json:"careerProgression"`
	KeyAchievements   []string            `json:"keyAchievements"`
	TechStack         []string            `json:"techStack"`
}

// EducationStatus is the completion state of an education entry.
type EducationStatus string

// Education statuses
const (
	EducationInProgress EducationStatus = "in-progress"
	EducationCompleted  EducationStatus = "completed"
	EducationDropped    EducationStatus = "dropped"
	EducationFreeze     EducationStatus = "freeze"
)

// EducationItem is one degree or program.
type EducationItem struct {
	Title           string          `json:"title"`
	Major           string          `json:"major"`
	InstitutionName string          `json:"institutionName"`
	Location        string          `json:"location"`
	StartDate       string          `json:"startDate"`
	EndDate         string          `json:"endDate"`
	Status          EducationStatus `json:"status"`
	GPA             string          `json:"gpa,omitempty"`
	GPAScale        string          `json:"gpaScale,omitempty"`
	Summary         []string        `json:"summary"`
}

// LearningItem is a topic the owner is currently studying.
type LearningItem struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

// ProjectItem is one entry in the project gallery.
type ProjectItem struct {
	ID               string   `json:"id"`
	Slug             string   `json:"slug"`
	Title            string   `json:"title"`
	Description      string   `json:"description"`
	LongDescription  string   `json:"longDescription,omitempty"`
	StartYear        int      `json:"startYear,omitempty"`
	EndYear          int      `json:"endYear,omitempty"`
	Images           []string `json:"images"`
	UsedSkills       []string `json:"usedSkills"`
	IsFeatured       bool     `json:"isFeatured"`
	Link             string   `json:"link"`
	AllowLinkPreview bool     `json:"allowLinkPreview,omitempty"`
}

// SocialLink is a named profile link.
type SocialLink struct {
	Name string `json:"name"`
	URL  string `json:"url"`
	Icon string `json:"icon"`
}

// ContactData is the contact section.
type ContactData struct {
	Email        string       `json:"email"`
	Location     string       `json:"location"`
	ResponseTime string       `json:"responseTime"`
	SocialLinks  []SocialLink `json:"socialLinks"`
}

// FieldValidation carries the client-side rule for a contact form field.
// Pattern is a regular expression source string.
type FieldValidation struct {
	MinLength    int    `json:"minLength,omitempty"`
	Pattern      string `json:"pattern,omitempty"`
	ErrorMessage string `json:"errorMessage"`
}

// FormField describes one contact form input.
type FormField struct {
	Name        string           `json:"name"`
	Label       string           `json:"label"`
	Type        string           `json:"type"`
	Placeholder string           `json:"placeholder"`
	Required    bool             `json:"required"`
	Validation  *FieldValidation `json:"validation,omitempty"`
}

// SubmitButton holds the contact form button labels.
type SubmitButton struct {
	Text        string `json:"text"`
	LoadingText string `json:"loadingText"`
}

// ContactFormConfig is the contact form definition.
type ContactFormConfig struct {
	Fields       []FormField  `json:"fields"`
	SubmitButton SubmitButton `json:"submitButton"`
}

// TestimonialItem is a recommendation from a client or colleague.
type TestimonialItem struct {
	ID          int    `json:"id"`
	Name        string `json:"name"`
	Role        string `json:"role"`
	Company     string `json:"company"`
	Image       string `json:"image"`
	Rating      int    `json:"rating"`
	Testimonial string `json:"testimonial"`
	Gender      string `json:"gender,omitempty"`
}

// ProjectBySlug returns the project with the given slug, or nil.
func (d *Document) ProjectBySlug(slug string) *ProjectItem {
	if d == nil {
		return nil
	}
	for i := range d.Projects {
		if d.Projects[i].Slug == slug {
			return &d.Projects[i]
		}
	}
	return nil
}

// FeaturedProjects returns the projects flagged as featured, in document order.
func (d *Document) FeaturedProjects() []ProjectItem {
	if d == nil {
		return nil
	}
	featured := make([]ProjectItem, 0)
	for _, p := range d.Projects {
		if p.IsFeatured {
			featured = append(featured, p)
		}
	}
	return featured
}

// SectionData returns the value of a named section, or false if the name is unknown.
func (d *Document) SectionData(name Section) (any, bool) {
	if d == nil {
		return nil, false
	}
	switch name {
	case SectionHero:
		return d.Hero, true
	case SectionSkills:
		return d.Skills, true
	case SectionExperience:
		return d.Experience, true
	case SectionEducation:
		return d.Education, true
	case SectionContinuousLearning:
		return d.ContinuousLearning, true
	case SectionProjects:
		return d.Projects, true
	case SectionContact:
		return d.Contact, true
	case SectionContactForm:
		return d.ContactForm, true
	case SectionTestimonials:
		return d.Testimonials, true
	default:
		return nil, false
	}
}
