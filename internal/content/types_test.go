package content

import "testing"

func TestValidators(t *testing.T) {
	if !ValidSocialLinkType("github") || ValidSocialLinkType("myspace") {
		t.Fatal("social link type validation is off")
	}
	if !ValidSkillLevel("Expert") || ValidSkillLevel("expert") {
		t.Fatal("skill levels are case sensitive")
	}
	if !ValidProjectType("client work") || ValidProjectType("hobby") {
		t.Fatal("project type validation is off")
	}
	if !ValidEmploymentType("full-time") || ValidEmploymentType("gig") {
		t.Fatal("employment type validation is off")
	}
	if !ValidSkillLevel(DefaultSkillLevel) {
		t.Fatal("default skill level must be a valid level")
	}
}
