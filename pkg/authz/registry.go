package authz

const (
	RoleViewer    = "viewer"
	RoleEditor    = "editor"
	RoleAnonymous = "anonymous"
)

const (
	ActionRead  = "read"
	ActionWrite = "write"
)

const DomainGlobal = "global"

const (
	ObjectRosterRecords = "roster.records"
	ObjectRosterDataset = "roster.dataset"
)
