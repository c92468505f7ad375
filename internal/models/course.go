package models

import (
	"time"

	"gorm.io/gorm"
)

type Course struct {
	ID          uint   `json:"id" gorm:"primaryKey"`
	Title       string `json:"title" gorm:"not null;size:200;index" validate:"required,min=1,max=200"`
	Description string `json:"description" gorm:"type:text" validate:"max=5000"`
	Duration    int    `json:"duration" gorm:"not null;default:0"` // minutes, sum of module durations
	IsActive    bool   `json:"isActive" gorm:"not null;default:true;index"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`

	// Relations
	Modules []Module `json:"modules" gorm:"foreignKey:CourseID;constraint:OnDelete:CASCADE" validate:"dive"`
	Notes   []Note   `json:"notes" gorm:"foreignKey:CourseID;constraint:OnDelete:CASCADE" validate:"dive"`
}

type Module struct {
	ID         uint   `json:"id" gorm:"primaryKey"`
	CourseID   uint   `json:"courseId" gorm:"not null;index"`
	Title      string `json:"title" gorm:"not null;size:200" validate:"required,min=1,max=200"`
	YoutubeURL string `json:"youtubeUrl" gorm:"not null;size:500" validate:"required,youtube_url"`
	Duration   int    `json:"duration" gorm:"not null;default:0" validate:"min=0"`
	Position   int    `json:"position" gorm:"not null;default:0"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`

	// Completion audit log
	CompletedBy []ModuleCompletion `json:"completedBy" gorm:"foreignKey:ModuleID;constraint:OnDelete:CASCADE" validate:"-"`
}

// ModuleCompletion records that a user finished a module. At most one row per (module, user).
type ModuleCompletion struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	ModuleID    uint      `json:"moduleId" gorm:"not null;uniqueIndex:idx_module_completion_user"`
	UserID      uint      `json:"userId" gorm:"not null;uniqueIndex:idx_module_completion_user;index"`
	CompletedAt time.Time `json:"completedAt" gorm:"not null"`
}

type Note struct {
	ID       uint   `json:"id" gorm:"primaryKey"`
	CourseID uint   `json:"courseId" gorm:"not null;index"`
	Title    string `json:"title" gorm:"not null;size:200" validate:"required,min=1,max=200"`
	PdfURL   string `json:"pdfUrl" gorm:"not null;size:500" validate:"required,url"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (Course) TableName() string {
	return "courses"
}

func (Module) TableName() string {
	return "course_modules"
}

func (ModuleCompletion) TableName() string {
	return "module_completions"
}

func (Note) TableName() string {
	return "course_notes"
}

func (c *Course) BeforeSave(tx *gorm.DB) error {
	c.RecalculateDuration()
	return c.Validate()
}

func (c *Course) Validate() error {
	return validateModel(c)
}

// RecalculateDuration sets Duration to the sum of module durations
func (c *Course) RecalculateDuration() {
	total := 0
	for _, m := range c.Modules {
		total += m.Duration
	}
	c.Duration = total
}

// FindModule returns the module with the given id, or nil
func (c *Course) FindModule(moduleID uint) *Module {
	for i := range c.Modules {
		if c.Modules[i].ID == moduleID {
			return &c.Modules[i]
		}
	}
	return nil
}

func (c *Course) ModuleIDs() []uint {
	ids := make([]uint, 0, len(c.Modules))
	for _, m := range c.Modules {
		ids = append(ids, m.ID)
	}
	return ids
}

// CompletionFor scans the audit log for an entry by userID
func (m *Module) CompletionFor(userID uint) *ModuleCompletion {
	for i := range m.CompletedBy {
		if m.CompletedBy[i].UserID == userID {
			return &m.CompletedBy[i]
		}
	}
	return nil
}

func (m *Module) BeforeSave(tx *gorm.DB) error {
	return m.Validate()
}

func (m *Module) Validate() error {
	return validateModel(m)
}

func (n *Note) Validate() error {
	return validateModel(n)
}
