package featureflag

type Flag string

const (
	FlagFrameStatsLogging Flag = "FRAME_STATS_LOGGING"
	FlagDisableFog        Flag = "DISABLE_FOG"
	FlagDisableSoakCamera Flag = "DISABLE_SOAK_CAMERA"
)
