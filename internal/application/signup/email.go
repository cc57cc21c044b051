package signup

import (
	"bytes"
	"fmt"
	"html/template"
	"time"
)

const otpSubject = "Your One-Time Password (OTP)"

var otpEmail = template.Must(template.New("otp").Parse(`<div style="font-family:sans-serif">
<h2>OTP Verification</h2>
<p>Your OTP for signup is:</p>
<h1>{{.Code}}</h1>
<p>This OTP will expire in <b>{{.Minutes}} minutes</b>.</p>
</div>
`))

func renderOTPEmail(code string, ttl time.Duration) (string, error) {
	var buf bytes.Buffer
	err := otpEmail.Execute(&buf, struct {
		Code    string
		Minutes int
	}{Code: code, Minutes: int(ttl.Minutes())})
	if err != nil {
		return "", fmt.Errorf("render otp email: %w", err)
	}
	return buf.String(), nil
}
