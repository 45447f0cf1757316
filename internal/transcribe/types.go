// Package transcribe sends recorded journal audio to a hosted
// speech-recognition model
package transcribe

// ErrorText replaces the transcript when transcription fails, so the
// journal flow continues
const ErrorText = "[error]"

// response is the JSON body returned by the recognition endpoint
type response struct {
	Text string `json:"text"`
}
