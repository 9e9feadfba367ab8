// Package remote provides the narrow remote-inspection capability the
// automated checks consume: read a file, test for its existence, close the
// connection. The SSH/SFTP implementation lives in ssh.go.
package remote

// Inspector is the read-only filesystem capability handed to checks.
// Implementations are not safe for concurrent use; one audit run owns one
// inspector. Callers must Close on every exit path.
type Inspector interface {
	// ReadFile returns the file's content. A missing file is ("", nil);
	// transport or permission failures return a non-nil error.
	ReadFile(path string) (string, error)
	// FileExists reports whether the path exists on the remote host.
	FileExists(path string) (bool, error)
	Close() error
}
