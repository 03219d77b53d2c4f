package queue

import "time"

// EventHeader 事件头.
type EventHeader struct {
	// Topic 冗余记录消息主题，便于离线处理或转储后定位来源主题.
	Topic string `json:"topic"`
	// TraceID 分布式追踪 ID.
	TraceID string `json:"trace_id,omitempty"`
	// Producer 生产者服务名.
	Producer string `json:"producer,omitempty"`
	// OccurredAt 事件发生时间（UTC，RFC3339）.
	OccurredAt time.Time `json:"occurred_at"`
	// Version 负载版本.
	Version string `json:"version,omitempty"`
}

// Message 通用消息封装.
type Message[T any] struct {
	Header  EventHeader `json:"header"`
	Payload T           `json:"payload"`
}

// FileRef 标识一条文件记录.
type FileRef struct {
	ID       string `json:"id"`
	Owner    string `json:"owner"`
	FileName string `json:"file_name"`
}

// FileIngestedPayload ee.file.ingested 负载.
type FileIngestedPayload struct {
	File        FileRef `json:"file"`
	SizeBytes   int64   `json:"size_bytes"`
	ContentType string  `json:"content_type"`
	SheetName   string  `json:"sheet_name"`
	RowCount    int     `json:"row_count"`
	Checksum    string  `json:"checksum"`
	BlobKey     string  `json:"blob_key,omitempty"`
}

// FileRejectedPayload ee.file.rejected 负载.
type FileRejectedPayload struct {
	Owner     string `json:"owner"`
	FileName  string `json:"file_name"`
	SizeBytes int64  `json:"size_bytes"`
	Kind      string `json:"kind"` // validation_error / decode_error
	Reason    string `json:"reason"`
}

// FileDeletedPayload ee.file.deleted 负载.
type FileDeletedPayload struct {
	File      FileRef `json:"file"`
	DeletedBy string  `json:"deleted_by"`
	BlobKey   string  `json:"blob_key,omitempty"`
}
