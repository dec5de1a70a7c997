package model

import "time"

type ApplicationStatus string

const (
	ApplyRegistered ApplicationStatus = "REGISTERED"
	ApplyReview     ApplicationStatus = "REVIEW"
	ApplyCompleted  ApplicationStatus = "COMPLETED"
	ApplyCanceled   ApplicationStatus = "CANCELED"
)

func (s ApplicationStatus) IsValid() bool {
	switch s {
	case ApplyRegistered, ApplyReview, ApplyCompleted, ApplyCanceled:
		return true
	}
	return false
}

func (s ApplicationStatus) Label() string {
	switch s {
	case ApplyRegistered:
		return "접수"
	case ApplyReview:
		return "검토"
	case ApplyCompleted:
		return "완료"
	case ApplyCanceled:
		return "취소"
	}
	return string(s)
}

type Division string

const (
	DivisionMiddle          Division = "MIDDLE"
	DivisionHigh            Division = "HIGH"
	DivisionSelfStudyRetake Division = "SELF_STUDY_RETAKE"
)

func (d Division) Label() string {
	switch d {
	case DivisionMiddle:
		return "중등부"
	case DivisionHigh:
		return "고등부"
	case DivisionSelfStudyRetake:
		return "독학재수"
	}
	return string(d)
}

type Gender string

const (
	GenderMale    Gender = "MALE"
	GenderFemale  Gender = "FEMALE"
	GenderUnknown Gender = "UNKNOWN"
)

func (g Gender) Label() string {
	switch g {
	case GenderMale:
		return "남"
	case GenderFemale:
		return "여"
	}
	return "미상"
}

type SubjectCode string

const (
	SubjectKorean  SubjectCode = "KOR"
	SubjectEnglish SubjectCode = "ENG"
	SubjectMath    SubjectCode = "MATH"
	SubjectScience SubjectCode = "SCI"
	SubjectSocial  SubjectCode = "SOC"
)

type ApplyLogType string

const (
	LogCreate ApplyLogType = "CREATE"
	LogUpdate ApplyLogType = "UPDATE"
	LogCall   ApplyLogType = "CALL"
	LogVisit  ApplyLogType = "VISIT"
	LogMemo   ApplyLogType = "MEMO"
	LogAssign ApplyLogType = "ASSIGN"
)

type ApplyApplication struct {
	ID                int64             `json:"id"`
	Status            ApplicationStatus `json:"status"`
	Division          Division          `json:"division"`
	StudentName       string            `json:"studentName"`
	Gender            Gender            `json:"gender"`
	BirthDate         *string           `json:"birthDate,omitempty"`
	StudentPhone      string            `json:"studentPhone"`
	SchoolName        *string           `json:"schoolName,omitempty"`
	SchoolGrade       *string           `json:"schoolGrade,omitempty"`
	GradeLevel        *string           `json:"gradeLevel,omitempty"`
	EmailAddress      *string           `json:"emailAddress,omitempty"`
	Address           *string           `json:"address,omitempty"`
	Guardian1Name     string            `json:"guardian1Name"`
	Guardian1Phone    string            `json:"guardian1Phone"`
	Guardian1Relation string            `json:"guardian1Relation"`
	Guardian2Name     *string           `json:"guardian2Name,omitempty"`
	Guardian2Phone    *string           `json:"guardian2Phone,omitempty"`
	Guardian2Relation *string           `json:"guardian2Relation,omitempty"`
	DesiredUniversity *string           `json:"desiredUniversity,omitempty"`
	DesiredDepartment *string           `json:"desiredDepartment,omitempty"`
	ParentOpinion     *string           `json:"parentOpinion,omitempty"`
	AssigneeName      *string           `json:"assigneeName,omitempty"`
	Subjects          []SubjectCode     `json:"subjects"`
	CreatedBy         *int64            `json:"createdBy,omitempty"`
	UpdatedBy         *int64            `json:"updatedBy,omitempty"`
	CreatedAt         time.Time         `json:"createdAt"`
	UpdatedAt         time.Time         `json:"updatedAt"`
}

type ApplyApplicationLog struct {
	ID             int64              `json:"id"`
	ApplicationID  int64              `json:"applicationId"`
	LogType        ApplyLogType       `json:"logType"`
	LogContent     *string            `json:"logContent,omitempty"`
	NextStatus     *ApplicationStatus `json:"nextStatus,omitempty"`
	NextAssigneeID *int64             `json:"nextAssigneeId,omitempty"`
	CreatedBy      *int64             `json:"createdBy,omitempty"`
	CreatedByName  string             `json:"createdByName"`
	CreatedAt      time.Time          `json:"createdAt"`
}

type ApplyNav struct {
	ID          int64     `json:"id"`
	StudentName string    `json:"studentName"`
	CreatedAt   time.Time `json:"createdAt"`
}

type ApplyApplicationDetail struct {
	ApplyApplication
	Logs        []ApplyApplicationLog `json:"logs"`
	Transcripts []LinkedFile          `json:"transcripts"`
	Photo       *LinkedFile           `json:"photo"`
	Previous    *ApplyNav             `json:"previous"`
	Next        *ApplyNav             `json:"next"`
}

type ApplySearch struct {
	Keyword      string
	Status       *ApplicationStatus
	Division     *Division
	AssigneeName string
	CreatedFrom  *time.Time
	CreatedTo    *time.Time
	SortAsc      bool
}

type ApplyStatistics struct {
	Total      int64                       `json:"total"`
	ByStatus   map[ApplicationStatus]int64 `json:"byStatus"`
	ByDivision map[Division]int64          `json:"byDivision"`
}

type ApplyApplicationRequest struct {
	Division          Division        `json:"division" validate:"required,oneof=MIDDLE HIGH SELF_STUDY_RETAKE"`
	StudentName       string          `json:"studentName" validate:"required,max=50"`
	Gender            Gender          `json:"gender" validate:"omitempty,oneof=MALE FEMALE UNKNOWN"`
	BirthDate         *string         `json:"birthDate" validate:"omitempty,datetime=2006-01-02"`
	StudentPhone      string          `json:"studentPhone" validate:"required,mobile"`
	SchoolName        *string         `json:"schoolName" validate:"omitempty,max=100"`
	SchoolGrade       *string         `json:"schoolGrade" validate:"omitempty,max=20"`
	GradeLevel        *string         `json:"gradeLevel" validate:"omitempty,max=20"`
	EmailAddress      *string         `json:"emailAddress" validate:"omitempty,email,max=100"`
	Address           *string         `json:"address" validate:"omitempty,max=255"`
	Guardian1Name     string          `json:"guardian1Name" validate:"required,max=50"`
	Guardian1Phone    string          `json:"guardian1Phone" validate:"required,mobile"`
	Guardian1Relation string          `json:"guardian1Relation" validate:"required,max=20"`
	Guardian2Name     *string         `json:"guardian2Name" validate:"omitempty,max=50"`
	Guardian2Phone    *string         `json:"guardian2Phone" validate:"omitempty,mobile"`
	Guardian2Relation *string         `json:"guardian2Relation" validate:"omitempty,max=20"`
	DesiredUniversity *string         `json:"desiredUniversity" validate:"omitempty,max=100"`
	DesiredDepartment *string         `json:"desiredDepartment" validate:"omitempty,max=100"`
	ParentOpinion     *string         `json:"parentOpinion"`
	Subjects          []SubjectCode   `json:"subjects" validate:"omitempty,dive,oneof=KOR ENG MATH SCI SOC"`
	Transcripts       []FileReference `json:"transcripts" validate:"omitempty,dive"`
	Photo             *FileReference  `json:"photo"`
}

type ApplyUpdateRequest struct {
	ApplyApplicationRequest
	// UpdateReason is written to the UPDATE log.
	UpdateReason string `json:"updateReason" validate:"omitempty,max=500"`
}

type ApplyLogRequest struct {
	LogType        ApplyLogType       `json:"logType" validate:"required,oneof=CALL VISIT MEMO"`
	LogContent     string             `json:"logContent" validate:"required"`
	NextStatus     *ApplicationStatus `json:"nextStatus"`
	NextAssigneeID *int64             `json:"nextAssigneeId" validate:"omitempty,gt=0"`
}

type ApplyStatusRequest struct {
	Status ApplicationStatus `json:"status" validate:"required"`
}

type ApplyAssigneeRequest struct {
	AssigneeName string `json:"assigneeName" validate:"required,max=50"`
}
