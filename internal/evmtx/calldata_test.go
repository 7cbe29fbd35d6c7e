package evmtx

import (
	"encoding/hex"
	"strings"
	"testing"
)

func TestParseFunction(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"transfer(address,uint256)", "transfer(address,uint256)"},
		{"function transfer(address to, uint amount)", "transfer(address,uint256)"},
		{"function batchSendETHSameAmount(address[] calldata recipients, uint256 amountPerRecipient) external payable", "batchSendETHSameAmount(address[],uint256)"},
		{"pause()", "pause()"},
		{"set(int[2] values)", "set(int256[2])"},
		{"function foo(uint256 a) external view returns (uint256, bool)", "foo(uint256)"},
		{"function getPool(address, address, uint24 fee) returns (address pool)", "getPool(address,address,uint24)"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			fn, err := ParseFunction(tt.input)
			if err != nil {
				t.Fatalf("ParseFunction(%q): %v", tt.input, err)
			}
			if got := fn.Signature(); got != tt.want {
				t.Errorf("got %s, want %s", got, tt.want)
			}
		})
	}
}

func TestParseFunctionInvalid(t *testing.T) {
	for _, input := range []string{"", "transfer", "(address)", "bad name(uint256)", "f(address,,uint256)", "f(uint256"} {
		if _, err := ParseFunction(input); err == nil {
			t.Errorf("expected error for %q", input)
		}
	}
}

func TestSelector(t *testing.T) {
	fn, err := ParseFunction("transfer(address,uint256)")
	if err != nil {
		t.Fatal(err)
	}
	if got := hex.EncodeToString(fn.Selector()); got != "a9059cbb" {
		t.Errorf("selector: got %s, want a9059cbb", got)
	}
}

func TestSelectorIgnoresReturns(t *testing.T) {
	fn, err := ParseFunction("function foo(uint256 a) external view returns (uint256, bool)")
	if err != nil {
		t.Fatal(err)
	}
	if got := hex.EncodeToString(fn.Selector()); got != "2fbebd38" {
		t.Errorf("selector: got %s, want 2fbebd38", got)
	}
}

func TestEncodeCall(t *testing.T) {
	tests := []struct {
		name      string
		signature string
		args      []string
		want      string
	}{
		{
			name:      "deposit",
			signature: "deposit(address,uint256,uint256)",
			args:      []string{"0xa0b86991c6218b36c1d19d4a2e9eb0ce3606eb48", "100000", "0"},
			want:      "0x0efe6a8b000000000000000000000000a0b86991c6218b36c1d19d4a2e9eb0ce3606eb4800000000000000000000000000000000000000000000000000000000000186a00000000000000000000000000000000000000000000000000000000000000000",
		},
		{
			name:      "approve",
			signature: "function approve(address spender, uint256 amount)",
			args:      []string{"0x000000000022D473030F116dDEE9F6B43aC78BA3", "1000000"},
			want:      "0x095ea7b3000000000000000000000000000000000022d473030f116ddee9f6b43ac78ba300000000000000000000000000000000000000000000000000000000000f4240",
		},
		{
			name:      "dynamic array",
			signature: "batchSendETHSameAmount(address[],uint256)",
			args:      []string{"[0xED8315fA2Ec4Dd0dA9870Bf8CD57eBf256A90772, 0xF659feEE62120Ce669A5C45Eb6616319D552dD93]", "0x9184e72a000"},
			want: "0x83c5dd25" +
				"0000000000000000000000000000000000000000000000000000000000000040" +
				"000000000000000000000000000000000000000000000000000009184e72a000" +
				"0000000000000000000000000000000000000000000000000000000000000002" +
				"000000000000000000000000ed8315fa2ec4dd0da9870bf8cd57ebf256a90772" +
				"000000000000000000000000f659feee62120ce669a5c45eb6616319d552dd93",
		},
		{
			name:      "small ints",
			signature: "setFlag(uint8,bool)",
			args:      []string{"255", "true"},
			want: "0xfb9e3a3b" +
				"00000000000000000000000000000000000000000000000000000000000000ff" +
				"0000000000000000000000000000000000000000000000000000000000000001",
		},
		{
			name:      "uint24",
			signature: "getPool(address,address,uint24)",
			args:      []string{"0xa0b86991c6218b36c1d19d4a2e9eb0ce3606eb48", "0x000000000022D473030F116dDEE9F6B43aC78BA3", "3000"},
			want: "0x1698ee82" +
				"000000000000000000000000a0b86991c6218b36c1d19d4a2e9eb0ce3606eb48" +
				"000000000000000000000000000000000022d473030f116ddee9f6b43ac78ba3" +
				"0000000000000000000000000000000000000000000000000000000000000bb8",
		},
		{
			name:      "int40",
			signature: "setOffset(int40)",
			args:      []string{"-2"},
			want: "0x573dabe9" +
				"fffffffffffffffffffffffffffffffffffffffffffffffffffffffffffffffe",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := EncodeCall(tt.signature, tt.args)
			if err != nil {
				t.Fatalf("EncodeCall: %v", err)
			}
			if got != tt.want {
				t.Errorf("EncodeCall:\n got  %s\n want %s", got, tt.want)
			}
		})
	}
}

func TestEncodeCallErrors(t *testing.T) {
	tests := []struct {
		name      string
		signature string
		args      []string
		errMsg    string
	}{
		{"arg count", "transfer(address,uint256)", []string{"0xa0b86991c6218b36c1d19d4a2e9eb0ce3606eb48"}, "expects 2 arguments"},
		{"bad address", "transfer(address,uint256)", []string{"0x1234", "1"}, "invalid address"},
		{"bad integer", "transfer(address,uint256)", []string{"0xa0b86991c6218b36c1d19d4a2e9eb0ce3606eb48", "ten"}, "invalid integer"},
		{"uint overflow", "setFlag(uint8,bool)", []string{"256", "true"}, "out of range"},
		{"negative uint", "setFlag(uint8,bool)", []string{"-1", "true"}, "out of range"},
		{"uint24 overflow", "f(uint24)", []string{"16777216"}, "out of range"},
		{"int40 underflow", "f(int40)", []string{"-549755813889"}, "out of range"},
		{"bad bool", "setFlag(uint8,bool)", []string{"1", "yes"}, "invalid bool"},
		{"array brackets", "f(address[])", []string{"0xa0b86991c6218b36c1d19d4a2e9eb0ce3606eb48"}, "brackets"},
		{"fixed bytes length", "f(bytes32)", []string{"0x01"}, "bytes32 needs 32 bytes"},
		{"tuple", "f((uint256,address))", []string{"(1,0x0)"}, "tuple"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := EncodeCall(tt.signature, tt.args)
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.errMsg) {
				t.Errorf("expected error containing %q, got %q", tt.errMsg, err.Error())
			}
		})
	}
}

func TestEncodeCallMixedTypes(t *testing.T) {
	got, err := EncodeCall("f(int256,bytes32,string,bytes)", []string{
		"-1",
		"0x" + strings.Repeat("ab", 32),
		"hi",
		"0xdead",
	})
	if err != nil {
		t.Fatalf("EncodeCall: %v", err)
	}
	// selector + 4 head words + string (len, data) + bytes (len, data)
	if len(got) != 2+2*(4+8*32) {
		t.Errorf("unexpected encoding length %d: %s", len(got), got)
	}
	if !strings.Contains(got, strings.Repeat("f", 64)) {
		t.Error("int256 -1 must encode as all ones")
	}
}
