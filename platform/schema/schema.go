package schema

import (
	"time"
)

// Collaborator user kinds. Only Mentor and Mentee participate in development plans.
const (
	KindCommon = "Common"
	KindMentor = "Mentor"
	KindMentee = "Mentee"
)

func ValidUserKind(kind string) bool {
	return kind == KindCommon || kind == KindMentor || kind == KindMentee
}

// Track program kinds.
const (
	Apprenticeship = "Apprenticeship"
	Internship     = "Internship"
)

func ValidProgram(program string) bool {
	return program == Apprenticeship || program == Internship
}

type Company struct {
	ID uint `gorm:"primaryKey"`

	LegalName string `gorm:"size:100;not null"`
	TaxID     string `gorm:"size:14;unique;not null"`
}

// Admin principals are created as a side effect of company signup and carry no
// role/department assignment. They live in a separate table from collaborators,
// so email uniqueness is only per table.
type Admin struct {
	ID uint `gorm:"primaryKey"`

	Name     string `gorm:"size:100;not null"`
	Title    string `gorm:"size:100;not null"`
	Email    string `gorm:"size:254;not null"`
	Password []byte
	Phone    string `gorm:"size:20"`
	Photo    string `gorm:"size:255"`

	CompanyID uint `gorm:"not null"`
	Company   *Company
}

type Collaborator struct {
	ID uint `gorm:"primaryKey"`

	NationalID string `gorm:"size:11;unique;not null"`
	Name       string `gorm:"size:100;not null"`
	BirthDate  time.Time
	Email      string `gorm:"size:254;not null"`
	Password   []byte
	Phone      string `gorm:"size:20"`
	Photo      string `gorm:"size:255"`

	UserKind string `gorm:"size:20;not null"`
	Status   int    `gorm:"not null;default:1"`

	DepartmentID uint `gorm:"not null"`
	Department   *Department
	CompanyID    uint `gorm:"not null"`
	Company      *Company
	RoleID       uint `gorm:"not null"`
	Role         *Role
}

// MenteeOnly marks roles that may only ever be assigned to mentees
// (apprentices and interns in the seeded catalog). This replaces matching on
// role name strings at the call sites.
type Role struct {
	ID         uint   `gorm:"primaryKey"`
	Name       string `gorm:"size:100;unique;not null"`
	MenteeOnly bool   `gorm:"not null;default:false"`
}

type Department struct {
	ID   uint   `gorm:"primaryKey"`
	Name string `gorm:"size:100;unique;not null"`
}

type TrackType struct {
	ID   uint   `gorm:"primaryKey"`
	Name string `gorm:"size:100;unique;not null"`
}

type Deadline struct {
	ID    uint   `gorm:"primaryKey"`
	Label string `gorm:"size:100;unique;not null"`
}

// The composite unique index closes the duplicate-tuple race at the store; the
// application still checks first so the caller sees a 400 rather than a
// translated constraint violation.
type Track struct {
	ID uint `gorm:"primaryKey"`

	TrackTypeID  uint   `gorm:"not null;uniqueIndex:idx_track_tuple"`
	Program      string `gorm:"size:20;not null;uniqueIndex:idx_track_tuple"`
	DepartmentID uint   `gorm:"not null;uniqueIndex:idx_track_tuple"`
	CompanyID    uint   `gorm:"not null;uniqueIndex:idx_track_tuple"`

	Name        string `gorm:"size:100;not null"`
	Description string `gorm:"size:255"`
	DeadlineID  uint   `gorm:"not null"`
	Status      int    `gorm:"not null;default:1"`

	TrackType  *TrackType
	Department *Department
	Company    *Company
	Deadline   *Deadline
}

// Pdi is a mentorship plan pairing one mentor and one mentee along a track.
//
// TrackTypeName, TrackName and MentorName are historical snapshots taken when
// the plan is created or edited. They are intentionally denormalized so that
// renaming a track or mentor later does not rewrite existing plans.
type Pdi struct {
	ID uint `gorm:"primaryKey"`

	TrackID uint `gorm:"not null"`
	Track   *Track

	TrackTypeName string `gorm:"size:100;not null"`
	Program       string `gorm:"size:20;not null"`
	TrackName     string `gorm:"size:100;not null"`

	MentorID   uint          `gorm:"not null"`
	Mentor     *Collaborator `gorm:"foreignKey:MentorID"`
	MentorName string        `gorm:"size:100;not null"`

	SkillTags string `gorm:"size:255"`

	MenteeID uint          `gorm:"not null"`
	Mentee   *Collaborator `gorm:"foreignKey:MenteeID"`

	Status     string `gorm:"size:30;not null"`
	Evaluation string `gorm:"size:40;not null"`
}

// SignupRequest records a pending onboarding request created alongside each
// new admin/company pair.
type SignupRequest struct {
	ID uint `gorm:"primaryKey"`

	AdminID   uint `gorm:"not null"`
	Admin     *Admin
	CompanyID uint `gorm:"not null"`
	Company   *Company
	Status    int `gorm:"not null;default:1"`
}

// AllModels lists every table for migration, dependencies first.
func AllModels() []interface{} {
	return []interface{}{
		&Company{}, &Department{}, &Role{}, &TrackType{}, &Deadline{},
		&Admin{}, &Collaborator{}, &Track{}, &Pdi{}, &SignupRequest{},
	}
}
