package client

import "time"

// Poll starts a background goroutine that calls ReceiveMessages(sender)
// on the driver's PollInterval cadence (§5: "a background poller calls
// receive_messages on a fixed 100 ms cadence"), invoking onMessages with
// each non-empty result and onError with any error the call returns.
// It is safe to call Poll for multiple distinct senders; each gets its
// own goroutine. Polling for a given Driver stops when Stop is called.
func (d *Driver) Poll(sender []byte, onMessages func([][]byte), onError func(error)) {
	if d.pollQuit == nil {
		d.pollQuit = make(chan struct{})
	}

	d.pollWG.Add(1)
	go func() {
		defer d.pollWG.Done()

		ticker := time.NewTicker(d.PollInterval)
		defer ticker.Stop()

		for {
			select {
			case <-d.pollQuit:
				return
			case <-ticker.C:
				messages, err := d.ReceiveMessages(sender)
				if err != nil {
					if onError != nil {
						onError(err)
					}
					continue
				}
				if len(messages) > 0 && onMessages != nil {
					onMessages(messages)
				}
			}
		}
	}()
}

func (d *Driver) stopPolling() {
	d.pollOnce.Do(func() {
		if d.pollQuit != nil {
			close(d.pollQuit)
		}
	})
	d.pollWG.Wait()
}
