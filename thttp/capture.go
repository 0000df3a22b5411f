package thttp

import "net/http"

// Response is what a handler wrote, as seen by Capture
type Response struct {
	Status int // 200 if the handler wrote a body without a status
	Bytes  int
}

// Capture wraps a http.ResponseWriter, recording the status code and the body
// size into *res
func Capture(w http.ResponseWriter, res *Response) http.ResponseWriter {
	return captureWriter{ResponseWriter: w, res: res}
}

type captureWriter struct {
	http.ResponseWriter
	res *Response
}

func (cw captureWriter) Write(b []byte) (int, error) {
	if cw.res.Status == 0 {
		cw.res.Status = http.StatusOK
	}
	n, err := cw.ResponseWriter.Write(b)
	cw.res.Bytes += n
	return n, err
}

func (cw captureWriter) WriteHeader(statusCode int) {
	if cw.res.Status == 0 {
		cw.res.Status = statusCode
	}
	cw.ResponseWriter.WriteHeader(statusCode)
}

// Unwrap gives http.ResponseController access to the wrapped writer
func (cw captureWriter) Unwrap() http.ResponseWriter {
	return cw.ResponseWriter
}
