package typetest

import "github.com/hujiansuntec-arch/IDL-tools/wire"

// Message id block. Even ids are requests, the following odd id is
// the matching response, per spec.md §4.2 — except the push channel,
// which gets a single trailing id with no paired response.
const (
	MsgTestIntegersReq       uint32 = 1000
	MsgTestIntegersResp      uint32 = 1001
	MsgTestFloatsReq         uint32 = 1002
	MsgTestFloatsResp        uint32 = 1003
	MsgTestStringReq         uint32 = 1004
	MsgTestStringResp        uint32 = 1005
	MsgTestStructReq         uint32 = 1006
	MsgTestStructResp        uint32 = 1007
	MsgTestStringSequenceReq uint32 = 1008
	MsgTestStringSequenceRsp uint32 = 1009
	MsgTestRecordSequenceReq uint32 = 1010
	MsgTestRecordSequenceRsp uint32 = 1011
	MsgTestInOutParamsReq    uint32 = 1012
	MsgTestInOutParamsResp   uint32 = 1013
	MsgOnKeyChanged          uint32 = 1014
)

// --- TestIntegers ---

type testIntegersRequest struct {
	I8  int8
	U8  uint8
	I16 int16
	U16 uint16
	I32 int32
	U32 uint32
	I64 int64
	U64 uint64
}

func (m testIntegersRequest) encode() []byte {
	w := wire.NewWriter(32)
	w.WriteUint32(MsgTestIntegersReq)
	w.WriteInt8(m.I8)
	w.WriteUint8(m.U8)
	w.WriteInt16(m.I16)
	w.WriteUint16(m.U16)
	w.WriteInt32(m.I32)
	w.WriteUint32(m.U32)
	w.WriteInt64(m.I64)
	w.WriteUint64(m.U64)
	return w.Bytes()
}

func decodeTestIntegersRequest(body []byte) (testIntegersRequest, error) {
	r := wire.NewReader(body)
	if _, err := r.ReadUint32(); err != nil { // message id, already routed on
		return testIntegersRequest{}, err
	}
	var m testIntegersRequest
	var err error
	if m.I8, err = r.ReadInt8(); err != nil {
		return testIntegersRequest{}, err
	}
	if m.U8, err = r.ReadUint8(); err != nil {
		return testIntegersRequest{}, err
	}
	if m.I16, err = r.ReadInt16(); err != nil {
		return testIntegersRequest{}, err
	}
	if m.U16, err = r.ReadUint16(); err != nil {
		return testIntegersRequest{}, err
	}
	if m.I32, err = r.ReadInt32(); err != nil {
		return testIntegersRequest{}, err
	}
	if m.U32, err = r.ReadUint32(); err != nil {
		return testIntegersRequest{}, err
	}
	if m.I64, err = r.ReadInt64(); err != nil {
		return testIntegersRequest{}, err
	}
	if m.U64, err = r.ReadUint64(); err != nil {
		return testIntegersRequest{}, err
	}
	return m, nil
}

type testIntegersResponse struct {
	Status      int32
	ReturnValue int32
}

func (m testIntegersResponse) encode() []byte {
	w := wire.NewWriter(12)
	w.WriteUint32(MsgTestIntegersResp)
	w.WriteInt32(m.Status)
	w.WriteInt32(m.ReturnValue)
	return w.Bytes()
}

func decodeTestIntegersResponse(body []byte) (testIntegersResponse, error) {
	r := wire.NewReader(body)
	if _, err := r.ReadUint32(); err != nil {
		return testIntegersResponse{}, err
	}
	var m testIntegersResponse
	var err error
	if m.Status, err = r.ReadInt32(); err != nil {
		return testIntegersResponse{}, err
	}
	if m.ReturnValue, err = r.ReadInt32(); err != nil {
		return testIntegersResponse{}, err
	}
	return m, nil
}

// --- TestFloats ---

type testFloatsRequest struct {
	F float32
	D float64
}

func (m testFloatsRequest) encode() []byte {
	w := wire.NewWriter(16)
	w.WriteUint32(MsgTestFloatsReq)
	w.WriteFloat32(m.F)
	w.WriteFloat64(m.D)
	return w.Bytes()
}

func decodeTestFloatsRequest(body []byte) (testFloatsRequest, error) {
	r := wire.NewReader(body)
	if _, err := r.ReadUint32(); err != nil {
		return testFloatsRequest{}, err
	}
	var m testFloatsRequest
	var err error
	if m.F, err = r.ReadFloat32(); err != nil {
		return testFloatsRequest{}, err
	}
	if m.D, err = r.ReadFloat64(); err != nil {
		return testFloatsRequest{}, err
	}
	return m, nil
}

type testFloatsResponse struct {
	Status      int32
	ReturnValue float64
}

func (m testFloatsResponse) encode() []byte {
	w := wire.NewWriter(16)
	w.WriteUint32(MsgTestFloatsResp)
	w.WriteInt32(m.Status)
	w.WriteFloat64(m.ReturnValue)
	return w.Bytes()
}

func decodeTestFloatsResponse(body []byte) (testFloatsResponse, error) {
	r := wire.NewReader(body)
	if _, err := r.ReadUint32(); err != nil {
		return testFloatsResponse{}, err
	}
	var m testFloatsResponse
	var err error
	if m.Status, err = r.ReadInt32(); err != nil {
		return testFloatsResponse{}, err
	}
	if m.ReturnValue, err = r.ReadFloat64(); err != nil {
		return testFloatsResponse{}, err
	}
	return m, nil
}

// --- TestString ---

type testStringRequest struct {
	Str string
}

func (m testStringRequest) encode() []byte {
	w := wire.NewWriter(16 + len(m.Str))
	w.WriteUint32(MsgTestStringReq)
	w.WriteString(m.Str)
	return w.Bytes()
}

func decodeTestStringRequest(body []byte) (testStringRequest, error) {
	r := wire.NewReader(body)
	if _, err := r.ReadUint32(); err != nil {
		return testStringRequest{}, err
	}
	str, err := r.ReadString()
	if err != nil {
		return testStringRequest{}, err
	}
	return testStringRequest{Str: str}, nil
}

type testStringResponse struct {
	Status      int32
	ReturnValue string
}

func (m testStringResponse) encode() []byte {
	w := wire.NewWriter(16 + len(m.ReturnValue))
	w.WriteUint32(MsgTestStringResp)
	w.WriteInt32(m.Status)
	w.WriteString(m.ReturnValue)
	return w.Bytes()
}

func decodeTestStringResponse(body []byte) (testStringResponse, error) {
	r := wire.NewReader(body)
	if _, err := r.ReadUint32(); err != nil {
		return testStringResponse{}, err
	}
	var m testStringResponse
	var err error
	if m.Status, err = r.ReadInt32(); err != nil {
		return testStringResponse{}, err
	}
	if m.ReturnValue, err = r.ReadString(); err != nil {
		return testStringResponse{}, err
	}
	return m, nil
}

// --- TestStruct ---

type testStructRequest struct {
	Data DataRecord
}

func (m testStructRequest) encode() []byte {
	w := wire.NewWriter(32)
	w.WriteUint32(MsgTestStructReq)
	m.Data.encode(w)
	return w.Bytes()
}

func decodeTestStructRequest(body []byte) (testStructRequest, error) {
	r := wire.NewReader(body)
	if _, err := r.ReadUint32(); err != nil {
		return testStructRequest{}, err
	}
	data, err := decodeDataRecord(r)
	if err != nil {
		return testStructRequest{}, err
	}
	return testStructRequest{Data: data}, nil
}

type testStructResponse struct {
	Status      int32
	ReturnValue DataRecord
}

func (m testStructResponse) encode() []byte {
	w := wire.NewWriter(32)
	w.WriteUint32(MsgTestStructResp)
	w.WriteInt32(m.Status)
	m.ReturnValue.encode(w)
	return w.Bytes()
}

func decodeTestStructResponse(body []byte) (testStructResponse, error) {
	r := wire.NewReader(body)
	if _, err := r.ReadUint32(); err != nil {
		return testStructResponse{}, err
	}
	var m testStructResponse
	var err error
	if m.Status, err = r.ReadInt32(); err != nil {
		return testStructResponse{}, err
	}
	if m.ReturnValue, err = decodeDataRecord(r); err != nil {
		return testStructResponse{}, err
	}
	return m, nil
}

// --- TestStringSequence ---

type testStringSequenceRequest struct {
	Seq []string
}

func (m testStringSequenceRequest) encode() []byte {
	w := wire.NewWriter(16)
	w.WriteUint32(MsgTestStringSequenceReq)
	encodeStringSeq(w, m.Seq)
	return w.Bytes()
}

func decodeTestStringSequenceRequest(body []byte) (testStringSequenceRequest, error) {
	r := wire.NewReader(body)
	if _, err := r.ReadUint32(); err != nil {
		return testStringSequenceRequest{}, err
	}
	seq, err := decodeStringSeq(r)
	if err != nil {
		return testStringSequenceRequest{}, err
	}
	return testStringSequenceRequest{Seq: seq}, nil
}

type testStringSequenceResponse struct {
	Status      int32
	ReturnValue []string
}

func (m testStringSequenceResponse) encode() []byte {
	w := wire.NewWriter(16)
	w.WriteUint32(MsgTestStringSequenceRsp)
	w.WriteInt32(m.Status)
	encodeStringSeq(w, m.ReturnValue)
	return w.Bytes()
}

func decodeTestStringSequenceResponse(body []byte) (testStringSequenceResponse, error) {
	r := wire.NewReader(body)
	if _, err := r.ReadUint32(); err != nil {
		return testStringSequenceResponse{}, err
	}
	var m testStringSequenceResponse
	var err error
	if m.Status, err = r.ReadInt32(); err != nil {
		return testStringSequenceResponse{}, err
	}
	if m.ReturnValue, err = decodeStringSeq(r); err != nil {
		return testStringSequenceResponse{}, err
	}
	return m, nil
}

// --- TestRecordSequence ---

type testRecordSequenceRequest struct {
	Seq []DataRecord
}

func (m testRecordSequenceRequest) encode() []byte {
	w := wire.NewWriter(16)
	w.WriteUint32(MsgTestRecordSequenceReq)
	encodeDataRecordSeq(w, m.Seq)
	return w.Bytes()
}

func decodeTestRecordSequenceRequest(body []byte) (testRecordSequenceRequest, error) {
	r := wire.NewReader(body)
	if _, err := r.ReadUint32(); err != nil {
		return testRecordSequenceRequest{}, err
	}
	seq, err := decodeDataRecordSeq(r)
	if err != nil {
		return testRecordSequenceRequest{}, err
	}
	return testRecordSequenceRequest{Seq: seq}, nil
}

type testRecordSequenceResponse struct {
	Status      int32
	ReturnValue []DataRecord
}

func (m testRecordSequenceResponse) encode() []byte {
	w := wire.NewWriter(16)
	w.WriteUint32(MsgTestRecordSequenceRsp)
	w.WriteInt32(m.Status)
	encodeDataRecordSeq(w, m.ReturnValue)
	return w.Bytes()
}

func decodeTestRecordSequenceResponse(body []byte) (testRecordSequenceResponse, error) {
	r := wire.NewReader(body)
	if _, err := r.ReadUint32(); err != nil {
		return testRecordSequenceResponse{}, err
	}
	var m testRecordSequenceResponse
	var err error
	if m.Status, err = r.ReadInt32(); err != nil {
		return testRecordSequenceResponse{}, err
	}
	if m.ReturnValue, err = decodeDataRecordSeq(r); err != nil {
		return testRecordSequenceResponse{}, err
	}
	return m, nil
}

// --- TestInOutParams ---

type testInOutParamsRequest struct {
	Value int32
	Str   string
	Data  DataRecord
	Seq   []int32
}

func (m testInOutParamsRequest) encode() []byte {
	w := wire.NewWriter(32 + len(m.Str))
	w.WriteUint32(MsgTestInOutParamsReq)
	w.WriteInt32(m.Value)
	w.WriteString(m.Str)
	m.Data.encode(w)
	encodeInt32Seq(w, m.Seq)
	return w.Bytes()
}

func decodeTestInOutParamsRequest(body []byte) (testInOutParamsRequest, error) {
	r := wire.NewReader(body)
	if _, err := r.ReadUint32(); err != nil {
		return testInOutParamsRequest{}, err
	}
	var m testInOutParamsRequest
	var err error
	if m.Value, err = r.ReadInt32(); err != nil {
		return testInOutParamsRequest{}, err
	}
	if m.Str, err = r.ReadString(); err != nil {
		return testInOutParamsRequest{}, err
	}
	if m.Data, err = decodeDataRecord(r); err != nil {
		return testInOutParamsRequest{}, err
	}
	if m.Seq, err = decodeInt32Seq(r); err != nil {
		return testInOutParamsRequest{}, err
	}
	return m, nil
}

type testInOutParamsResponse struct {
	Status int32
	Value  int32
	Str    string
	Data   DataRecord
	Seq    []int32
}

func (m testInOutParamsResponse) encode() []byte {
	w := wire.NewWriter(32 + len(m.Str))
	w.WriteUint32(MsgTestInOutParamsResp)
	w.WriteInt32(m.Status)
	w.WriteInt32(m.Value)
	w.WriteString(m.Str)
	m.Data.encode(w)
	encodeInt32Seq(w, m.Seq)
	return w.Bytes()
}

func decodeTestInOutParamsResponse(body []byte) (testInOutParamsResponse, error) {
	r := wire.NewReader(body)
	if _, err := r.ReadUint32(); err != nil {
		return testInOutParamsResponse{}, err
	}
	var m testInOutParamsResponse
	var err error
	if m.Status, err = r.ReadInt32(); err != nil {
		return testInOutParamsResponse{}, err
	}
	if m.Value, err = r.ReadInt32(); err != nil {
		return testInOutParamsResponse{}, err
	}
	if m.Str, err = r.ReadString(); err != nil {
		return testInOutParamsResponse{}, err
	}
	if m.Data, err = decodeDataRecord(r); err != nil {
		return testInOutParamsResponse{}, err
	}
	if m.Seq, err = decodeInt32Seq(r); err != nil {
		return testInOutParamsResponse{}, err
	}
	return m, nil
}

// --- OnKeyChanged (push, no response) ---

type onKeyChangedMessage struct {
	Event KeyChangeEvent
}

func (m onKeyChangedMessage) encode() []byte {
	w := wire.NewWriter(48)
	w.WriteUint32(MsgOnKeyChanged)
	m.Event.encode(w)
	return w.Bytes()
}

func decodeOnKeyChangedMessage(body []byte) (onKeyChangedMessage, error) {
	r := wire.NewReader(body)
	if _, err := r.ReadUint32(); err != nil {
		return onKeyChangedMessage{}, err
	}
	event, err := decodeKeyChangeEvent(r)
	if err != nil {
		return onKeyChangedMessage{}, err
	}
	return onKeyChangedMessage{Event: event}, nil
}
