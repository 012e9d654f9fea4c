//go:build ((amd64 || 386 || arm || mips || mipsle || wasm) && !tryrw_enable_padding) || tryrw_disable_padding

package opt

const Padding_ = false

// LinePad_ is empty when padding is disabled.
// Use: go build -tags=tryrw_disable_padding to force it off anywhere.
type LinePad_ struct{}
