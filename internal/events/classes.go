package events

// Event classes pushed by the control server.
const (
	MusicPlay        = "platypush.message.event.music.MusicPlayEvent"
	MusicPause       = "platypush.message.event.music.MusicPauseEvent"
	MusicStop        = "platypush.message.event.music.MusicStopEvent"
	NewPlayingTrack  = "platypush.message.event.music.NewPlayingTrackEvent"
	VolumeChange     = "platypush.message.event.music.VolumeChangeEvent"
	PlaylistChange   = "platypush.message.event.music.PlaylistChangeEvent"
	SeekChange       = "platypush.message.event.music.SeekChangeEvent"
	SensorData       = "platypush.message.event.sensor.SensorDataChangeEvent"
	SensorAbove      = "platypush.message.event.sensor.SensorDataAboveThresholdEvent"
	SensorBelow      = "platypush.message.event.sensor.SensorDataBelowThresholdEvent"
	BluetoothConnect = "platypush.message.event.bluetooth.BluetoothDeviceConnectedEvent"
	BluetoothLost    = "platypush.message.event.bluetooth.BluetoothDeviceDisconnectedEvent"
)

// MusicClasses are the classes the player panel reacts to.
var MusicClasses = []string{MusicPlay, MusicPause, MusicStop, NewPlayingTrack}

// IsMusic reports whether class is one of [MusicClasses].
func IsMusic(class string) bool {
	for _, c := range MusicClasses {
		if c == class {
			return true
		}
	}
	return false
}
