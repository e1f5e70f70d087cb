// Package setup produces SSH key pairs for managed hosts and deploys them.
//
// Two provisioners satisfy host.Provisioner:
//
//	ExecProvisioner    runs ssh-keygen (or SSV_SSH_KEYGEN_PATH)
//	NativeProvisioner  generates in-process, no external tool needed
//
// Both write <path> and <path>.pub. Pick one from settings with
// FromSettings.
//
// Keys are generated without a passphrase. Add one afterwards with
// ssh-keygen -p if the host warrants it.
//
// CopyKey deploys a managed public key to a remote account with
// ssh-copy-id; CopyKeyManual prints the equivalent by-hand steps when
// that tool is missing.
package setup
