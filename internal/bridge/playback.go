package bridge

// playback writes every event queued on the input port to the device. An
// event that cannot be written in full is lost.
func (b *Bridge) playback(nframes uint32) {
	if b.ports.Input == nil {
		return
	}
	b.ports.Input.ForEach(nframes, b.writeEvent)
}

func (b *Bridge) playbackEvent(data []byte) {
	if len(data) == 0 {
		return
	}
	if err := b.devices.Write(data); err != nil && b.debug {
		b.logger.Debug("playback event dropped",
			b.logger.Field().Bytes("data", data),
			b.logger.Field().Error("error", err))
	}
}
