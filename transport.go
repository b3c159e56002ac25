package zkteco

// transport is the behavior a connected session exposes, regardless of
// whether it rides on TCP or UDP (spec.md §9: the client holds exactly
// one of these, modeled as an interface rather than a shared base type).
type transport interface {
	authenticate(commKey uint32) error
	getUsers() ([]rawUser, error)
	getAttendanceLogs() ([]rawAttendance, error)
	getCounts() (userCount, logCount uint32, err error)
	getMemoryInfo() (MemoryInfo, error)
	deviceOption(key string) (string, error)
	disconnect() error
}
