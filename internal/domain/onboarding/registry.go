package onboarding

type StepDescriptor struct {
	ID            int
	Title         string
	Description   string
	EstimatedTime string
}

var registry = []StepDescriptor{
	{ID: SectionPhoto, Title: "Upload Profile Photo", Description: "Add a professional photo to your profile", EstimatedTime: "1 min"},
	{ID: SectionProfile, Title: "Complete Your Profile", Description: "Tell people who you are and how to reach you", EstimatedTime: "3 min"},
	{ID: SectionWorkExperience, Title: "Add Work Experience", Description: "Import or manually add your work history", EstimatedTime: "5 min"},
	{ID: SectionSkills, Title: "Setup Skills & Software", Description: "List your skills and the tools you work with", EstimatedTime: "3 min"},
	{ID: SectionSocialLinks, Title: "Connect Social Links", Description: "Link the platforms where your work lives", EstimatedTime: "2 min"},
}

// Steps returns the wizard steps in order.
func Steps() []StepDescriptor {
	out := make([]StepDescriptor, len(registry))
	copy(out, registry)
	return out
}

func descriptor(id int) (StepDescriptor, bool) {
	for _, d := range registry {
		if d.ID == id {
			return d, true
		}
	}
	return StepDescriptor{}, false
}

// NewPortfolio starts an empty wizard positioned on the first step.
func NewPortfolio() Portfolio {
	sections := make([]Section, 0, len(registry))
	for _, d := range registry {
		sections = append(sections, Section{
			ID:             d.ID,
			Title:          d.Title,
			Description:    d.Description,
			EstimatedTime:  d.EstimatedTime,
			Status:         StatusPending,
			OriginalStatus: StatusPending,
			Data:           EmptyData(d.ID),
		})
	}
	return Load(Portfolio{Sections: sections})
}

// FromRecord builds the wizard from a loaded record. The record's section
// order is kept; known steps missing from it are appended in registry order.
// Missing display text and payloads are filled in from the registry.
func FromRecord(p Portfolio) Portfolio {
	next := p.clone()
	seen := make(map[int]bool, len(next.Sections))
	for i := range next.Sections {
		s := &next.Sections[i]
		seen[s.ID] = true
		if d, ok := descriptor(s.ID); ok {
			if s.Title == "" {
				s.Title = d.Title
			}
			if s.Description == "" {
				s.Description = d.Description
			}
			if s.EstimatedTime == "" {
				s.EstimatedTime = d.EstimatedTime
			}
		}
		if s.Data == nil {
			s.Data = EmptyData(s.ID)
		}
	}
	for _, d := range registry {
		if seen[d.ID] {
			continue
		}
		next.Sections = append(next.Sections, Section{
			ID:            d.ID,
			Title:         d.Title,
			Description:   d.Description,
			EstimatedTime: d.EstimatedTime,
			Status:        StatusPending,
			Data:          EmptyData(d.ID),
		})
	}
	return Load(next)
}
