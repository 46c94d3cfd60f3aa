package seeders

import "makerspace/internal/entities"

type userSeed struct {
	FirstName    string
	LastName     string
	Username     string
	Email        string
	UniversityID string
	Privilege    entities.Privilege
}

var usersData = []userSeed{
	{"Sam", "Staff", "staff", "staff@makerspace.local", "900000001", entities.PrivilegeStaff},
	{"Morgan", "Mentor", "mentor", "mentor@makerspace.local", "900000002", entities.PrivilegeMentor},
	{"Casey", "Maker", "maker", "maker@makerspace.local", "900000003", entities.PrivilegeMaker},
}

type equipmentSeed struct {
	Name    string
	Modules []string
}

var equipmentData = []equipmentSeed{
	{"Laser Cutter", []string{"Shop Safety", "Laser Cutter Basics"}},
	{"Drill Press", []string{"Shop Safety"}},
	{"3D Printer", nil},
}

func yes() *bool { t := true; return &t }

var modulesData = []entities.TrainingModule{
	{
		Name: "Shop Safety",
		Quiz: []entities.ModuleItem{
			{ID: "intro", Type: entities.ItemText, Text: "Read the shop rules before continuing."},
			{ID: "glasses", Type: entities.ItemMultipleChoice, Text: "When are safety glasses required?", Options: []entities.ModuleOption{
				{ID: "always", Text: "Whenever a machine is running", Correct: yes()},
				{ID: "never", Text: "Only when a mentor asks"},
			}},
			{ID: "ppe", Type: entities.ItemCheckboxes, Text: "Which items must be removed before using rotating tools?", Options: []entities.ModuleOption{
				{ID: "gloves", Text: "Gloves", Correct: yes()},
				{ID: "jewelry", Text: "Loose jewelry", Correct: yes()},
				{ID: "shoes", Text: "Closed-toe shoes"},
			}},
		},
	},
	{
		Name: "Laser Cutter Basics",
		Quiz: []entities.ModuleItem{
			{ID: "video", Type: entities.ItemYoutube, Text: "https://www.youtube.com/watch?v=laser-intro"},
			{ID: "pvc", Type: entities.ItemMultipleChoice, Text: "Can PVC be cut on the laser?", Options: []entities.ModuleOption{
				{ID: "no", Text: "No, it releases chlorine gas", Correct: yes()},
				{ID: "yes", Text: "Yes, at low power"},
			}},
		},
	},
}
