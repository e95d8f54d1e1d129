package onboarding

import "math"

// Result tells the caller what a navigation request did.
type Result int

const (
	// Ignored: the request was out of range; nothing changed.
	Ignored Result = iota
	// Moved: the stepper now points at a new (or the same) index.
	Moved
	// WizardComplete: Advance was called on the last step.
	WizardComplete
)

func (r Result) String() string {
	switch r {
	case Moved:
		return "moved"
	case WizardComplete:
		return "complete"
	default:
		return "ignored"
	}
}

// GoTo leaves the active step, auto-completing it when valid, and makes target
// the active step.
func GoTo(p Portfolio, target int) (Portfolio, Result) {
	return move(p, target, true)
}

// Advance moves one step forward. On the last step it reports WizardComplete
// and returns p untouched.
func Advance(p Portfolio) (Portfolio, Result) {
	if len(p.Sections) == 0 {
		return p, Ignored
	}
	if p.StepperPosition >= len(p.Sections)-1 {
		return p, WizardComplete
	}
	return GoTo(p, p.StepperPosition+1)
}

// Retreat moves one step back; it does nothing on the first step.
func Retreat(p Portfolio) (Portfolio, Result) {
	if p.StepperPosition <= 0 {
		return p, Ignored
	}
	return GoTo(p, p.StepperPosition-1)
}

// JumpToStep activates the section with sectionID. The step being left is
// never auto-completed: it only keeps (or loses) its previous verdict.
func JumpToStep(p Portfolio, sectionID int) (Portfolio, Result) {
	i := p.IndexOf(sectionID)
	if i < 0 {
		return p, Ignored
	}
	return move(p, i, false)
}

func move(p Portfolio, target int, autoComplete bool) (Portfolio, Result) {
	if target < 0 || target >= len(p.Sections) {
		return p, Ignored
	}

	next := p.clone()
	if cur := p.StepperPosition; cur >= 0 && cur < len(next.Sections) {
		next.Sections[cur] = settle(next.Sections[cur], autoComplete)
	}
	commit(next.Sections, target)
	next.StepperPosition = target
	return next, Moved
}

// settle records the validator's verdict in OriginalStatus.
func settle(s Section, autoComplete bool) Section {
	if autoComplete && IsStepValid(s) {
		s.OriginalStatus = StatusCompleted
		return s
	}
	s.OriginalStatus = restore(s.OriginalStatus)
	return s
}

// restore keeps the previous verdict; anything but completed or error is pending.
func restore(prior Status) Status {
	switch prior {
	case StatusCompleted, StatusError:
		return prior
	default:
		return StatusPending
	}
}

func visible(s Section) Status {
	switch s.OriginalStatus {
	case StatusCompleted, StatusError, StatusPending:
		return s.OriginalStatus
	default:
		return StatusPending
	}
}

// commit projects OriginalStatus onto Status and overlays current on active.
func commit(sections []Section, active int) {
	for i := range sections {
		if i == active {
			sections[i].Status = StatusCurrent
			continue
		}
		sections[i].Status = visible(sections[i])
	}
}

// SaveSectionData replaces the payload of one section. Statuses are left to
// the next navigation or Snapshot.
func SaveSectionData(p Portfolio, sectionID int, data SectionData) (Portfolio, error) {
	i := p.IndexOf(sectionID)
	if i < 0 {
		return p, ErrUnknownSection
	}
	if !matchesSection(sectionID, data) {
		return p, ErrDataMismatch
	}
	next := p.clone()
	next.Sections[i].Data = data
	return next, nil
}

// Snapshot is the persisted form: the active step is settled and every
// Status equals its OriginalStatus, without the current overlay.
func Snapshot(p Portfolio) Portfolio {
	next := p.clone()
	if cur := next.StepperPosition; cur >= 0 && cur < len(next.Sections) {
		next.Sections[cur] = settle(next.Sections[cur], true)
	}
	return Detach(next)
}

// Detach drops the current overlay without settling the active step, so the
// stored verdicts are exactly the ones navigation produced. Drafts are saved
// in this form between requests.
func Detach(p Portfolio) Portfolio {
	next := p.clone()
	for i := range next.Sections {
		s := &next.Sections[i]
		if s.OriginalStatus == "" || s.OriginalStatus == StatusCurrent {
			s.OriginalStatus = s.Status
		}
		s.OriginalStatus = visible(*s)
		s.Status = s.OriginalStatus
	}
	return next
}

// Load rehydrates a stored or foreign aggregate: statuses are normalized into
// OriginalStatus, the position is clamped and the active step is highlighted.
func Load(p Portfolio) Portfolio {
	next := p.clone()
	for i := range next.Sections {
		s := &next.Sections[i]
		if s.OriginalStatus == "" || s.OriginalStatus == StatusCurrent {
			s.OriginalStatus = s.Status
		}
		s.OriginalStatus = visible(*s)
	}

	switch {
	case len(next.Sections) == 0:
		next.StepperPosition = 0
		return next
	case next.StepperPosition < 0:
		next.StepperPosition = 0
	case next.StepperPosition >= len(next.Sections):
		next.StepperPosition = len(next.Sections) - 1
	}
	commit(next.Sections, next.StepperPosition)
	return next
}

// SettleAll re-runs the validator over every section, as the publishing
// boundary does before trusting any status. Valid sections become completed;
// a completed claim that no longer validates drops to pending, error stays.
func SettleAll(p Portfolio) Portfolio {
	next := p.clone()
	for i := range next.Sections {
		s := &next.Sections[i]
		if s.OriginalStatus == "" || s.OriginalStatus == StatusCurrent {
			s.OriginalStatus = s.Status
		}
		switch {
		case IsStepValid(*s):
			s.OriginalStatus = StatusCompleted
		case s.OriginalStatus == StatusError:
		default:
			s.OriginalStatus = StatusPending
		}
		s.Status = s.OriginalStatus
	}
	return next
}

type Progress struct {
	Completed  int `json:"completedSections"`
	Total      int `json:"totalSections"`
	Percentage int `json:"completionPercentage"`
}

// ProgressOf counts sections whose verdict is completed.
func ProgressOf(p Portfolio) Progress {
	pr := Progress{Total: len(p.Sections)}
	for _, s := range p.Sections {
		if s.OriginalStatus == StatusCompleted || s.Status == StatusCompleted {
			pr.Completed++
		}
	}
	if pr.Total > 0 {
		pr.Percentage = int(math.Round(float64(pr.Completed) / float64(pr.Total) * 100))
	}
	return pr
}
