package graphthread

type ErrClosed struct{}

func (ErrClosed) Error() string {
	return "the graph thread is closed"
}
