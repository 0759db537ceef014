package delivery

// Strategy is the chosen delivery path for one request.
type Strategy int

const (
	StrategyStream Strategy = iota
	StrategyDownload
)

func (s Strategy) String() string {
	if s == StrategyStream {
		return "stream"
	}
	return "download"
}

// SelectStrategy picks the delivery path from the video duration. The
// boundary is inclusive: a clip of exactly streamMaxSeconds still
// streams.
func SelectStrategy(durationSeconds, streamMaxSeconds int) Strategy {
	if durationSeconds <= streamMaxSeconds {
		return StrategyStream
	}
	return StrategyDownload
}
