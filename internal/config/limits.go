package config

const (
	MaxAuditBytes  = 20 * 1024 * 1024 // 20MB: requirements + responses + inline corpus
	MaxCorpusBytes = 50 * 1024 * 1024 // 50MB for standalone corpus uploads
)
