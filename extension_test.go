package tario

import "testing"

func TestExtensionStoreGlobalThenLocalPAXPrecedence(t *testing.T) {
	es := newExtensionStore()

	es.begin(int64(len(paxRecord("uname", "global-user"))))
	es.feed(paxRecord("uname", "global-user"))
	es.finalise(extPAXGlobal, UTF8Encoding)

	local := paxRecord("uname", "local-user")
	es.begin(int64(len(local)))
	es.feed(local)
	es.finalise(extPAXLocal, UTF8Encoding)

	h := &Header{Type: TypeReg, Name: "f"}
	es.apply(h)

	if h.Uname != "local-user" {
		t.Fatalf("Uname = %q, want local-user to override global", h.Uname)
	}
	if h.PAX["uname"] != "local-user" {
		t.Fatalf("PAX[uname] = %q", h.PAX["uname"])
	}
}

func TestExtensionStoreGlobalPersistsAcrossEntries(t *testing.T) {
	es := newExtensionStore()
	rec := paxRecord("gname", "globalgroup")
	es.begin(int64(len(rec)))
	es.feed(rec)
	es.finalise(extPAXGlobal, UTF8Encoding)

	h1 := &Header{Type: TypeReg}
	es.apply(h1)
	h2 := &Header{Type: TypeReg}
	es.apply(h2)

	if h1.Gname != "globalgroup" || h2.Gname != "globalgroup" {
		t.Fatal("global PAX state should apply to every subsequent header")
	}
}

func TestExtensionStoreLongNameOverridesPAXPath(t *testing.T) {
	es := newExtensionStore()

	pax := paxRecord("path", "from-pax.txt")
	es.begin(int64(len(pax)))
	es.feed(pax)
	es.finalise(extPAXLocal, UTF8Encoding)

	long := []byte("from-long-name.txt\x00")
	es.begin(int64(len(long)))
	es.feed(long)
	es.finalise(extLongName, UTF8Encoding)

	h := &Header{Type: TypeReg, Name: "short.txt"}
	es.apply(h)

	if h.Name != "from-long-name.txt" {
		t.Fatalf("Name = %q, want GNU long name to win over PAX path", h.Name)
	}
}

func TestExtensionStoreTrailingSlashPromotesToDirectory(t *testing.T) {
	es := newExtensionStore()
	h := &Header{Type: TypeReg, Name: "somedir/"}
	es.apply(h)
	if h.Type != TypeDirectory || h.Name != "somedir" {
		t.Fatalf("got (%v, %q), want (Directory, somedir)", h.Type, h.Name)
	}
}

func TestExtensionStoreTrailingSlashOnlyAppliesToRegularFiles(t *testing.T) {
	es := newExtensionStore()
	h := &Header{Type: TypeSymlink, Name: "link/"}
	es.apply(h)
	if h.Type != TypeSymlink || h.Name != "link/" {
		t.Fatal("trailing-slash promotion must not apply to non-regular types")
	}
}

func TestExtensionStorePendingStateClearsAfterApply(t *testing.T) {
	es := newExtensionStore()
	long := []byte("once.txt\x00")
	es.begin(int64(len(long)))
	es.feed(long)
	es.finalise(extLongName, UTF8Encoding)

	h1 := &Header{Type: TypeReg, Name: "a"}
	es.apply(h1)
	h2 := &Header{Type: TypeReg, Name: "b"}
	es.apply(h2)

	if h1.Name != "once.txt" {
		t.Fatalf("h1.Name = %q", h1.Name)
	}
	if h2.Name != "b" {
		t.Fatalf("h2.Name = %q, pending long name should have been cleared after first apply", h2.Name)
	}
}

func TestParsePAXTimeFractionalSeconds(t *testing.T) {
	tm, ok := parsePAXTime("1700000000.25")
	if !ok {
		t.Fatal("expected parsePAXTime to succeed")
	}
	if tm.Unix() != 1700000000 || tm.Nanosecond() != 250000000 {
		t.Fatalf("got unix=%d nanos=%d", tm.Unix(), tm.Nanosecond())
	}
}
