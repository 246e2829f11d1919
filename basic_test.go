package pcg815

import "testing"

func drainOutput(rt *basicRuntime) string {
	var out []byte
	for {
		c := rt.popOutputChar()
		if c == 0 {
			break
		}
		out = append(out, c)
	}
	return string(out)
}

// TestBasicRunIsSynchronous grounds the IF/GOTO jump scenario: RUN executes
// to completion inside executeLine, with no tick() needed in between.
func TestBasicRunIsSynchronous(t *testing.T) {
	rt, _ := newTestRuntime()
	rt.executeLine("10 LET A=1")
	rt.executeLine("20 IF A=1 THEN 40")
	rt.executeLine("30 PRINT 0")
	rt.executeLine("40 PRINT 9")
	rt.executeLine("RUN")
	if got := drainOutput(rt); got != "9\r\n" {
		t.Fatalf("output = %q, want %q (line 30 skipped)", got, "9\r\n")
	}
}

func TestBasicPrintCommaAndSemicolon(t *testing.T) {
	rt, _ := newTestRuntime()
	rt.executeLine(`10 PRINT "A";"B"`)
	rt.executeLine("RUN")
	if got := drainOutput(rt); got != "AB\r\n" {
		t.Fatalf("output = %q, want %q", got, "AB\r\n")
	}
}

func TestBasicForNextLoop(t *testing.T) {
	rt, _ := newTestRuntime()
	rt.executeLine("10 FOR I=1 TO 3")
	rt.executeLine("20 PRINT I")
	rt.executeLine("30 NEXT I")
	rt.executeLine("RUN")
	if got := drainOutput(rt); got != "1\r\n2\r\n3\r\n" {
		t.Fatalf("output = %q, want %q", got, "1\r\n2\r\n3\r\n")
	}
}

func TestBasicGosubReturn(t *testing.T) {
	rt, _ := newTestRuntime()
	rt.executeLine("10 GOSUB 100")
	rt.executeLine("20 PRINT 2")
	rt.executeLine("30 END")
	rt.executeLine("100 PRINT 1")
	rt.executeLine("110 RETURN")
	rt.executeLine("RUN")
	if got := drainOutput(rt); got != "1\r\n2\r\n" {
		t.Fatalf("output = %q, want %q", got, "1\r\n2\r\n")
	}
}

func TestBasicReturnWithoutGosubIsError(t *testing.T) {
	rt, _ := newTestRuntime()
	rt.executeLine("10 RETURN")
	rt.executeLine("RUN")
	got := drainOutput(rt)
	if got != "ERR RETURN W/O GOSUB (E09)\r\n" {
		t.Fatalf("output = %q, want E09 error line", got)
	}
}

func TestBasicDataRead(t *testing.T) {
	rt, _ := newTestRuntime()
	rt.executeLine("10 DATA 7,8,9")
	rt.executeLine("20 READ A")
	rt.executeLine("30 READ B")
	rt.executeLine("40 PRINT A+B")
	rt.executeLine("RUN")
	if got := drainOutput(rt); got != "15\r\n" {
		t.Fatalf("output = %q, want %q", got, "15\r\n")
	}
}

func TestBasicReadExhaustedIsError(t *testing.T) {
	rt, _ := newTestRuntime()
	rt.executeLine("10 READ A")
	rt.executeLine("RUN")
	got := drainOutput(rt)
	if got != "ERR BAD STMT (E10)\r\n" {
		t.Fatalf("output = %q, want E10 error line", got)
	}
}

func TestBasicArrayDimAndAccess(t *testing.T) {
	rt, _ := newTestRuntime()
	rt.executeLine("10 DIM A(3)")
	rt.executeLine("20 LET A(2)=42")
	rt.executeLine("30 PRINT A(2)")
	rt.executeLine("RUN")
	if got := drainOutput(rt); got != "42\r\n" {
		t.Fatalf("output = %q, want %q", got, "42\r\n")
	}
}

func TestBasicArrayOutOfBoundsIsError(t *testing.T) {
	rt, _ := newTestRuntime()
	rt.executeLine("10 DIM A(3)")
	rt.executeLine("20 LET A(9)=1")
	rt.executeLine("RUN")
	got := drainOutput(rt)
	if got != "ERR BAD VAR (E03)\r\n" {
		t.Fatalf("output = %q, want E03 error line", got)
	}
}

func TestBasicInputInRunIsError(t *testing.T) {
	rt, _ := newTestRuntime()
	rt.executeLine("10 INPUT A")
	rt.executeLine("RUN")
	got := drainOutput(rt)
	if got != "ERR INPUT IN RUN (E08)\r\n" {
		t.Fatalf("output = %q, want E08 error line", got)
	}
}

// TestBasicImmediateInputConsumesNextLine grounds the immediate-mode INPUT
// design: the line right after INPUT is consumed as the typed value, not
// parsed as a new command.
func TestBasicImmediateInputConsumesNextLine(t *testing.T) {
	rt, _ := newTestRuntime()
	rt.executeLine("INPUT A")
	if !rt.awaitingInput {
		t.Fatalf("expected awaitingInput after immediate-mode INPUT")
	}
	rt.executeLine("7")
	if rt.awaitingInput {
		t.Fatalf("awaitingInput should clear once the value line is consumed")
	}
	if rt.getVar("A").num != 7 {
		t.Fatalf("A = %v, want 7", rt.getVar("A").num)
	}
}

func TestBasicRunawayBudgetAborts(t *testing.T) {
	rt, a := newTestRuntime()
	rt.stepBudget = 5
	rt.executeLine("10 GOTO 10")
	rt.executeLine("RUN")
	got := drainOutput(rt)
	if got != "ERR RUNAWAY (E07)\r\n" {
		t.Fatalf("output = %q, want E07 error line", got)
	}
	if len(a.warnings) == 0 {
		t.Fatalf("expected a runaway warning logged through the adapter")
	}
}

func TestBasicPokeAndOutDispatch(t *testing.T) {
	rt, a := newTestRuntime()
	rt.executeLine("10 POKE 100,200")
	rt.executeLine("20 OUT 5,9")
	rt.executeLine("RUN")
	if a.mem[100] != 200 {
		t.Fatalf("mem[100] = %d, want 200", a.mem[100])
	}
	if a.ports[5] != 9 {
		t.Fatalf("ports[5] = %d, want 9", a.ports[5])
	}
}

func TestBasicListRoundTrip(t *testing.T) {
	rt, _ := newTestRuntime()
	rt.executeLine("10 PRINT 1")
	rt.executeLine("LIST")
	if got := drainOutput(rt); got != "10 PRINT 1\r\n" {
		t.Fatalf("LIST output = %q, want %q", got, "10 PRINT 1\r\n")
	}
}

func TestBasicNewClearsProgramAndVars(t *testing.T) {
	rt, _ := newTestRuntime()
	rt.executeLine("10 LET A=1")
	rt.executeLine("NEW")
	rt.executeLine("LIST")
	if got := drainOutput(rt); got != "" {
		t.Fatalf("LIST after NEW = %q, want empty", got)
	}
	if rt.getVar("A").num != 0 {
		t.Fatalf("A after NEW = %v, want 0 (var map cleared)", rt.getVar("A").num)
	}
}

func TestBasicDeletingAProgramLine(t *testing.T) {
	rt, _ := newTestRuntime()
	rt.executeLine("10 PRINT 1")
	rt.executeLine("10")
	rt.executeLine("LIST")
	if got := drainOutput(rt); got != "" {
		t.Fatalf("LIST after deleting line 10 = %q, want empty", got)
	}
}
