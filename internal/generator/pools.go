package generator

import "github.com/Ch4rC0M1n0U/osintgenerator/internal/domain"

// Reference catalogs the derivation engine draws from. One profession,
// company, and university are drawn per bundle and reused across all four
// platform personas so the bundle stays internally consistent.

var interestCatalog = []string{
	"Photography", "Travel", "Cooking", "Fitness", "Reading", "Music", "Art", "Technology",
	"Sports", "Gaming", "Fashion", "Food", "Nature", "Movies", "Books", "DIY", "Pets",
	"Yoga", "Dancing", "Writing", "Hiking", "Cycling", "Swimming", "Running", "Meditation",
}

var professionCatalog = []string{
	"Software Engineer", "Marketing Manager", "Graphic Designer", "Teacher", "Nurse",
	"Sales Representative", "Project Manager", "Data Analyst", "Consultant", "Writer",
	"Photographer", "Chef", "Architect", "Lawyer", "Doctor", "Accountant", "Engineer",
}

var companyCatalog = []string{
	"Tech Solutions Inc", "Global Marketing Co", "Creative Studios", "HealthCare Plus",
	"Education First", "Innovation Labs", "Digital Agency", "Consulting Group",
	"Design House", "Media Company", "StartUp Inc", "Enterprise Solutions",
}

var universityCatalog = []string{
	"State University", "Tech Institute", "Business College", "Community College",
	"Design Academy", "Medical School", "Engineering University", "Liberal Arts College",
}

// professionalInterests is the allowlist the LinkedIn persona filters the
// shared interest draw against. The result may be empty.
var professionalInterests = map[string]bool{
	"Technology": true,
	"Business":   true,
	"Marketing":  true,
}

var facebookGroupCatalog = []string{
	"Local Photography Group", "Fitness Enthusiasts", "Book Club",
	"Tech Professionals", "Travel Lovers", "Food Enthusiasts",
}

var instagramThemeCatalog = []string{
	"Lifestyle", "Food", "Travel", "Fashion", "Fitness", "Art", "Nature", "Pets",
}

var instagramHashtagCatalog = []string{
	"#photography", "#travel", "#food", "#fitness", "#art", "#nature",
	"#lifestyle", "#fashion", "#instagood", "#photooftheday",
}

var twitterTopicCatalog = []string{
	"Technology", "Current Events", "Industry News", "Personal Life",
	"Hobbies", "Travel", "Food", "Sports",
}

var linkedInSkillCatalog = []string{
	"Project Management", "Communication", "Leadership", "Analytics",
	"Problem Solving", "Teamwork", "Strategic Planning", "Innovation",
}

var relationshipStatuses = []string{"Single", "In a relationship", "Married"}

type countRange struct {
	min, max int
}

type engagementRanges struct {
	followers countRange
	following countRange
	posts     countRange
}

// platformEngagement bounds the follower/following/post draws per platform.
var platformEngagement = map[domain.Platform]engagementRanges{
	domain.PlatformFacebook:  {countRange{150, 800}, countRange{200, 600}, countRange{50, 300}},
	domain.PlatformInstagram: {countRange{300, 1500}, countRange{400, 800}, countRange{20, 150}},
	domain.PlatformTwitter:   {countRange{100, 600}, countRange{200, 800}, countRange{100, 1000}},
	domain.PlatformLinkedIn:  {countRange{200, 1000}, countRange{300, 700}, countRange{10, 50}},
}
