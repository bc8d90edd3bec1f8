package options

type SlideOptions struct {
	Dir           *string
	MaxImages     *int
	MaxResolution *int
	Width         *int
	Height        *int
	Effect        *string
	Record        *bool
	Duration      *float64
	FPS           *int
	OutputFile    *string
	FFMPEGPath    *string
	Quiet         *bool
}
