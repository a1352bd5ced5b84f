package lowir

import "ember/internal/anvil"

// runtimeSymbolName maps Anvil's closed RuntimeSymbol enum to the
// internal/runtimeabi.Table symbol it names. Kept as its own small
// mapping rather than folded into lower_func.go's instruction switch,
// since it is the one place a new runtime ABI entry needs a matching
// case added.
func runtimeSymbolName(s anvil.RuntimeSymbol) string {
	switch s {
	case anvil.RuntimeStringNew:
		return "string_new"
	case anvil.RuntimeStringConcat:
		return "string_concat"
	case anvil.RuntimeChannelNew:
		return "channel_new"
	case anvil.RuntimeChannelSend:
		return "channel_send"
	case anvil.RuntimeChannelReceive:
		return "channel_receive"
	case anvil.RuntimeThreadSpawn:
		return "thread_spawn"
	case anvil.RuntimeFutureNew:
		return "future_new"
	case anvil.RuntimeFutureRegisterContinuation:
		return "future_register_continuation"
	case anvil.RuntimeFutureComplete:
		return "future_complete"
	case anvil.RuntimeFutureFail:
		return "future_fail"
	case anvil.RuntimeFutureValue:
		return "future_value"
	case anvil.RuntimeFFILoadLibrary:
		return "ffi_load_library"
	case anvil.RuntimeFFIResolve:
		return "ffi_resolve"
	case anvil.RuntimeReflectFields:
		return "reflect_fields"
	case anvil.RuntimeReflectGet:
		return "reflect_get"
	case anvil.RuntimeJSONEncodeString:
		return "json_encode_string"
	case anvil.RuntimeJSONField:
		return "json_field"
	case anvil.RuntimeJSONScalar:
		return "json_scalar"
	default:
		return ""
	}
}
