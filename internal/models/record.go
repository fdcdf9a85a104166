package models

import "time"

// RecordStatus tracks whether a record is on the shelf, out on loan, or retired.
type RecordStatus string

const (
	StatusAvailable RecordStatus = "Available"
	StatusBorrowed  RecordStatus = "Borrowed"
	StatusArchived  RecordStatus = "Archived"
)

// Valid reports whether the status is a known value.
func (s RecordStatus) Valid() bool {
	switch s {
	case StatusAvailable, StatusBorrowed, StatusArchived:
		return true
	}
	return false
}

// Semester identifies the academic term a document belongs to.
type Semester string

const (
	SemesterFall   Semester = "Fall"
	SemesterSpring Semester = "Spring"
	SemesterSummer Semester = "Summer"
)

// Valid reports whether the semester is a known value.
func (s Semester) Valid() bool {
	switch s {
	case SemesterFall, SemesterSpring, SemesterSummer:
		return true
	}
	return false
}

// ExamType qualifies exam documents. Only meaningful when DocumentType is Exam.
type ExamType string

const (
	ExamMidterm ExamType = "Midterm"
	ExamFinal   ExamType = "Final"
	ExamQuiz    ExamType = "Quiz"
)

// Valid reports whether the exam type is a known value.
func (e ExamType) Valid() bool {
	switch e {
	case ExamMidterm, ExamFinal, ExamQuiz:
		return true
	}
	return false
}

// DocumentType classifies the physical document.
type DocumentType string

const (
	DocExam             DocumentType = "Exam"
	DocInternshipReport DocumentType = "Internship Report"
	DocGradProject      DocumentType = "Grad Project"
)

// Valid reports whether the document type is a known value.
func (d DocumentType) Valid() bool {
	switch d {
	case DocExam, DocInternshipReport, DocGradProject:
		return true
	}
	return false
}

// Record is the central catalog entity describing one archived document.
type Record struct {
	ID            string       `db:"id" json:"id"`
	FileCode      string       `db:"file_code" json:"file_code"`
	CourseCode    string       `db:"course_code" json:"course_code"`
	CourseName    string       `db:"course_name" json:"course_name"`
	LecturerName  string       `db:"lecturer_name" json:"lecturer_name"`
	Semester      Semester     `db:"semester" json:"semester"`
	AcademicYear  string       `db:"academic_year" json:"academic_year"`
	ExamType      *ExamType    `db:"exam_type" json:"exam_type,omitempty"`
	DocumentType  DocumentType `db:"document_type" json:"document_type"`
	CloudFileID   *string      `db:"cloud_file_id" json:"cloud_file_id,omitempty"`
	CloudFileLink *string      `db:"cloud_file_link" json:"cloud_file_link,omitempty"`
	DigitalCopy   bool         `db:"has_digital_copy" json:"has_digital_copy"`
	LocationID    string       `db:"location_id" json:"location_id"`
	UploadedBy    *string      `db:"uploaded_by" json:"uploaded_by,omitempty"`
	UploadedAt    time.Time    `db:"uploaded_at" json:"uploaded_at"`
	Status        RecordStatus `db:"status" json:"status"`
}

// RecordSearch holds the optional search filters. Empty fields mean
// "no constraint"; an entirely empty filter returns the full catalog.
type RecordSearch struct {
	CourseCode   string
	CourseName   string
	Lecturer     string
	AcademicYear string
	Semester     string
	DocumentType string
}

// Empty reports whether no filter was supplied at all.
func (f RecordSearch) Empty() bool {
	return f.CourseCode == "" && f.CourseName == "" && f.Lecturer == "" &&
		f.AcademicYear == "" && f.Semester == "" && f.DocumentType == ""
}
