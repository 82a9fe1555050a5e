package relay

// ConfirmedHead returns the highest block height considered final given the
// current head and the configured confirmation depth. It returns false when
// the chain has not yet produced enough blocks to satisfy the depth, in
// which case the caller must wait.
func ConfirmedHead(head, confirmations uint64) (uint64, bool) {
	if head < confirmations {
		return 0, false
	}
	return head - confirmations, true
}
