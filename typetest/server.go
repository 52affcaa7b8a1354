package typetest

import (
	"context"
	"fmt"

	"github.com/hujiansuntec-arch/IDL-tools/server"
)

// Handlers is the business logic a generated service implementation
// supplies — the typed equivalent of the original system's pure
// virtual callback methods, expressed as a Go interface instead of
// abstract methods a concrete server subclasses.
type Handlers interface {
	TestIntegers(i8 int8, u8 uint8, i16 int16, u16 uint16, i32 int32, u32 uint32, i64 int64, u64 uint64) (int32, error)
	TestFloats(f float32, d float64) (float64, error)
	TestString(s string) (string, error)
	TestStruct(data DataRecord) (DataRecord, error)
	TestStringSequence(seq []string) ([]string, error)
	TestRecordSequence(seq []DataRecord) ([]DataRecord, error)
	TestInOutParams(value int32, str string, data DataRecord, seq []int32) (value2 int32, str2 string, data2 DataRecord, seq2 []int32, err error)
}

// RegisterHandlers builds the DispatchTable a server.Server or
// server.DatagramServer drives, wiring every request message id to the
// matching Handlers method — the static equivalent of the teacher's
// runtime service-name-to-receiver lookup.
func RegisterHandlers(h Handlers) server.DispatchTable {
	return server.DispatchTable{
		MsgTestIntegersReq: func(ctx context.Context, requestMessage []byte) ([]byte, error) {
			req, err := decodeTestIntegersRequest(requestMessage)
			if err != nil {
				return nil, fmt.Errorf("typetest: decode TestIntegers request: %w", err)
			}
			result, err := h.TestIntegers(req.I8, req.U8, req.I16, req.U16, req.I32, req.U32, req.I64, req.U64)
			if err != nil {
				return nil, err
			}
			return testIntegersResponse{ReturnValue: result}.encode(), nil
		},
		MsgTestFloatsReq: func(ctx context.Context, requestMessage []byte) ([]byte, error) {
			req, err := decodeTestFloatsRequest(requestMessage)
			if err != nil {
				return nil, fmt.Errorf("typetest: decode TestFloats request: %w", err)
			}
			result, err := h.TestFloats(req.F, req.D)
			if err != nil {
				return nil, err
			}
			return testFloatsResponse{ReturnValue: result}.encode(), nil
		},
		MsgTestStringReq: func(ctx context.Context, requestMessage []byte) ([]byte, error) {
			req, err := decodeTestStringRequest(requestMessage)
			if err != nil {
				return nil, fmt.Errorf("typetest: decode TestString request: %w", err)
			}
			result, err := h.TestString(req.Str)
			if err != nil {
				return nil, err
			}
			return testStringResponse{ReturnValue: result}.encode(), nil
		},
		MsgTestStructReq: func(ctx context.Context, requestMessage []byte) ([]byte, error) {
			req, err := decodeTestStructRequest(requestMessage)
			if err != nil {
				return nil, fmt.Errorf("typetest: decode TestStruct request: %w", err)
			}
			result, err := h.TestStruct(req.Data)
			if err != nil {
				return nil, err
			}
			return testStructResponse{ReturnValue: result}.encode(), nil
		},
		MsgTestStringSequenceReq: func(ctx context.Context, requestMessage []byte) ([]byte, error) {
			req, err := decodeTestStringSequenceRequest(requestMessage)
			if err != nil {
				return nil, fmt.Errorf("typetest: decode TestStringSequence request: %w", err)
			}
			result, err := h.TestStringSequence(req.Seq)
			if err != nil {
				return nil, err
			}
			return testStringSequenceResponse{ReturnValue: result}.encode(), nil
		},
		MsgTestRecordSequenceReq: func(ctx context.Context, requestMessage []byte) ([]byte, error) {
			req, err := decodeTestRecordSequenceRequest(requestMessage)
			if err != nil {
				return nil, fmt.Errorf("typetest: decode TestRecordSequence request: %w", err)
			}
			result, err := h.TestRecordSequence(req.Seq)
			if err != nil {
				return nil, err
			}
			return testRecordSequenceResponse{ReturnValue: result}.encode(), nil
		},
		MsgTestInOutParamsReq: func(ctx context.Context, requestMessage []byte) ([]byte, error) {
			req, err := decodeTestInOutParamsRequest(requestMessage)
			if err != nil {
				return nil, fmt.Errorf("typetest: decode TestInOutParams request: %w", err)
			}
			value, str, data, seq, err := h.TestInOutParams(req.Value, req.Str, req.Data, req.Seq)
			if err != nil {
				return nil, err
			}
			return testInOutParamsResponse{Value: value, Str: str, Data: data, Seq: seq}.encode(), nil
		},
	}
}

// pusher is the subset of server.Server and server.DatagramServer that
// PushOnKeyChanged needs — both satisfy it without modification.
type pusher interface {
	Broadcast(message []byte, exclude server.Client)
}

// PushOnKeyChanged broadcasts a key-change notification to every
// tracked client except exclude (pass nil to exclude no one). It is
// the generated helper scenario 5 calls once per key change; whichever
// binding's server is passed in drives the actual fan-out.
func PushOnKeyChanged(srv pusher, event KeyChangeEvent, exclude server.Client) {
	msg := onKeyChangedMessage{Event: event}.encode()
	srv.Broadcast(msg, exclude)
}
