package pipeline

// ChannelSink forwards events into a channel, for a UI running on its
// own goroutine (see internal/ui).
type ChannelSink struct {
	Ch chan<- Event
}

func (s ChannelSink) OnEvent(evt Event) {
	if s.Ch == nil {
		return
	}
	s.Ch <- evt
}
