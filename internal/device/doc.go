// Package device decides which compute device and output resolution a run uses.
//
// A Prober asks an Inspector for the host inventory and applies a fixed policy:
// a CUDA GPU yields ("cuda", 512), everything else ("cpu", 384). Apple MPS is
// detected but skipped because the models do not support it reliably. The
// default SystemInspector shells out to nvidia-smi and honours
// CUDA_VISIBLE_DEVICES the way torch does.
package device
