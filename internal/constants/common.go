package constants

type (
	APIStatus   string
	AuditAction string
	CachePrefix string
	ImportType  string
)

const (
	APIStatusOk    APIStatus = "ok"
	APIStatusError APIStatus = "error"

	ActionCreate         AuditAction = "create"
	ActionUpdate         AuditAction = "update"
	ActionDelete         AuditAction = "delete"
	ActionLogin          AuditAction = "login"
	ActionUpload         AuditAction = "upload"
	ActionExport         AuditAction = "export"
	ActionChangePassword AuditAction = "change_password"

	CachePrefixVanSearch    CachePrefix = "VAN_SEARCH_"
	CachePrefixDriverSearch CachePrefix = "DRIVER_SEARCH_"

	ImportTypeVan    ImportType = "van"
	ImportTypeDriver ImportType = "driver"
)
