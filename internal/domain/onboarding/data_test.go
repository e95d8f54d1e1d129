package onboarding

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeSectionData(t *testing.T) {
	data, err := DecodeSectionData(SectionSkills, json.RawMessage(`{"skills":["Editing"],"softwares":["Premiere Pro"]}`))
	require.NoError(t, err)
	assert.Equal(t, SkillsData{Skills: []string{"Editing"}, Softwares: []string{"Premiere Pro"}}, data)

	data, err = DecodeSectionData(SectionPhoto, json.RawMessage(` null `))
	require.NoError(t, err)
	assert.Nil(t, data)

	_, err = DecodeSectionData(SectionProfile, json.RawMessage(`{"firstName":12}`))
	assert.Error(t, err)
}

func TestDecodeSectionData_UnknownIDKeepsRawPayload(t *testing.T) {
	raw := `{"id":7,"title":"Extra","description":"","status":"pending","data":{"anything":[1,2]}}`

	var s Section
	require.NoError(t, json.Unmarshal([]byte(raw), &s))
	assert.IsType(t, UnknownData{}, s.Data)
	assert.True(t, IsStepValid(s))

	out, err := json.Marshal(s)
	require.NoError(t, err)
	assert.Contains(t, string(out), `"data":{"anything":[1,2]}`)
}

func TestIsStepValid_Profile(t *testing.T) {
	s := Section{ID: SectionProfile, Data: validProfile()}
	assert.True(t, IsStepValid(s))

	for name, mutate := range map[string]func(*ProfileData){
		"first name": func(d *ProfileData) { d.FirstName = "  " },
		"last name":  func(d *ProfileData) { d.LastName = "" },
		"title":      func(d *ProfileData) { d.Title = "" },
		"email":      func(d *ProfileData) { d.Contact.Email = "" },
		"city":       func(d *ProfileData) { d.Location.City = "" },
		"country":    func(d *ProfileData) { d.Location.Country = "\t" },
	} {
		t.Run(name, func(t *testing.T) {
			d := validProfile()
			mutate(&d)
			assert.False(t, IsStepValid(Section{ID: SectionProfile, Data: d}))
		})
	}

	assert.False(t, IsStepValid(Section{ID: SectionProfile}))
	assert.False(t, IsStepValid(Section{ID: SectionProfile, Data: SkillsData{Skills: []string{"x"}}}))
}

func TestIsStepValid_Photo(t *testing.T) {
	assert.True(t, IsStepValid(Section{ID: SectionPhoto, Data: PhotoData{ProfileImage: Image{URL: "https://img.example.com/a.jpg"}}}))
	assert.True(t, IsStepValid(Section{ID: SectionPhoto, Data: PhotoData{ProfileImage: Image{URL: " https://img.example.com/a.jpg "}}}))

	assert.False(t, IsStepValid(Section{ID: SectionPhoto, Data: PhotoData{}}))
	assert.False(t, IsStepValid(Section{ID: SectionPhoto, Data: PhotoData{ProfileImage: Image{URL: "   ", Alt: "me"}}}))
	assert.False(t, IsStepValid(Section{ID: SectionPhoto}))
	assert.False(t, IsStepValid(Section{ID: SectionPhoto, Data: SkillsData{Skills: []string{"x"}}}))
}

func TestIsStepValid_UnknownSectionAlwaysValid(t *testing.T) {
	assert.True(t, IsStepValid(Section{ID: 7}))
	assert.True(t, IsStepValid(Section{ID: 0}))
	assert.True(t, IsStepValid(Section{ID: 42, Data: UnknownData{Raw: json.RawMessage(`{}`)}}))
	assert.True(t, IsStepValid(Section{ID: 6, Data: SkillsData{}}))
}

func TestIsStepValid_ListSections(t *testing.T) {
	assert.False(t, IsStepValid(Section{ID: SectionWorkExperience, Data: WorkExperienceData{}}))
	assert.True(t, IsStepValid(Section{ID: SectionWorkExperience, Data: WorkExperienceData{WorkExperience: []WorkExperience{{ID: "1"}}}}))
	assert.False(t, IsStepValid(Section{ID: SectionSkills, Data: SkillsData{Softwares: []string{"Figma"}}}))
	assert.True(t, IsStepValid(Section{ID: SectionSocialLinks, Data: SocialLinksData{SocialLinks: []SocialLink{{Platform: "github"}}}}))
}

func TestFromRecord_FillsMissingSteps(t *testing.T) {
	p := FromRecord(Portfolio{
		Sections: []Section{
			{ID: SectionSkills, Status: StatusCompleted, Data: SkillsData{Skills: []string{"Editing"}}},
		},
	})

	require.Len(t, p.Sections, 5)
	assert.Equal(t, SectionSkills, p.Sections[0].ID)
	assert.Equal(t, "Setup Skills & Software", p.Sections[0].Title)
	assert.Equal(t, StatusCurrent, p.Sections[0].Status)
	assert.Equal(t, StatusCompleted, p.Sections[0].OriginalStatus)
	assert.Equal(t, SectionPhoto, p.Sections[1].ID)
	assert.Equal(t, PhotoData{}, p.Sections[1].Data)
}

func TestSocialLinks(t *testing.T) {
	assert.Empty(t, ValidateSocialLink(SocialLink{Platform: "instagram", URL: "https://instagram.com/sonu.edits"}))
	assert.Empty(t, ValidateSocialLink(SocialLink{Platform: "youtube"}))
	assert.Equal(t, `Unsupported platform "myspace"`, ValidateSocialLink(SocialLink{Platform: "myspace", URL: "https://myspace.com/x"}))
	assert.Equal(t, "Please enter a valid LinkedIn URL", ValidateSocialLink(SocialLink{Platform: "linkedin", URL: "https://linkedin.com/sonu"}))

	assert.Equal(t, "@sonu.edits", ExtractHandle("instagram", "https://instagram.com/sonu.edits/"))
	assert.Equal(t, "@jabsvideo", ExtractHandle("youtube", "https://youtube.com/@jabsvideo"))
	assert.Equal(t, "@cuts", ExtractHandle("tiktok", "https://tiktok.com/@cuts"))
	assert.Equal(t, "sonu-choudhary", ExtractHandle("linkedin", "https://linkedin.com/in/sonu-choudhary"))
	assert.Equal(t, "sonu", ExtractHandle("github", "https://github.com/sonu"))
}

func TestDurationText(t *testing.T) {
	now := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	end := "2023-03-01"

	cases := []struct {
		start string
		end   *string
		want  string
	}{
		{"2022-01-01", &end, "1 year 1 month"},
		{"2024-05-20", nil, "Less than a month"},
		{"2021-06-01", nil, "3 years"},
		{"2024-03-01", nil, "3 months"},
	}
	for _, tc := range cases {
		got, err := DurationText(tc.start, tc.end, now)
		require.NoError(t, err)
		assert.Equal(t, tc.want, got, tc.start)
	}

	_, err := DurationText("01/02/2024", nil, now)
	assert.Error(t, err)
}

func TestPrepareSectionData(t *testing.T) {
	now := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)

	data, fields := PrepareSectionData(SocialLinksData{SocialLinks: []SocialLink{
		{Platform: "instagram", URL: " https://instagram.com/sonu "},
		{Platform: "linkedin", URL: "not a url"},
	}}, now)
	links := data.(SocialLinksData).SocialLinks
	assert.Equal(t, "@sonu", links[0].Handle)
	assert.Equal(t, map[string]string{"socialLinks[1].url": "Please enter a valid LinkedIn URL"}, fields)

	end := "2024-01-01"
	data, fields = PrepareSectionData(WorkExperienceData{WorkExperience: []WorkExperience{
		{ID: "1", StartDate: "2021-06-01", IsCurrentRole: true, EndDate: &end},
	}}, now)
	assert.Nil(t, fields)
	exp := data.(WorkExperienceData).WorkExperience[0]
	assert.Nil(t, exp.EndDate)
	assert.Equal(t, "3 years", exp.DurationOfEmployment)
}
