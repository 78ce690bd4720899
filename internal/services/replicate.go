package services

import (
	"context"

	"github.com/golang/glog"

	"github.com/cryptichearts/backend/internal/records"
)

// replicate sends a local record to peer's store. Failures are logged and
// reported, never returned: the local write stands and can be re-sent later.
func replicate(ctx context.Context, client records.Client, op, recordID, peer string) bool {
	st, err := client.Send(ctx, recordID, peer)
	if err != nil {
		glog.Warningf("[%s] send record=%s to=%s error=%v", op, recordID, peer, err)
		return false
	}
	if !st.OK() {
		glog.Warningf("[%s] send record=%s to=%s status=%s", op, recordID, peer, st)
		return false
	}
	return true
}
