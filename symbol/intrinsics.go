package symbol

// intrinsics maps every Fortran 77 intrinsic function name to its
// result type. Names in this table are never reported as undeclared or
// unused.
var intrinsics = loadIntrinsics()

// IsIntrinsic reports whether name is a standard intrinsic function.
func IsIntrinsic(name string) bool {
	_, ok := intrinsics[name]
	return ok
}

// IntrinsicType returns the result type of an intrinsic function, or
// empty when name is not an intrinsic.
func IntrinsicType(name string) string {
	return intrinsics[name]
}

func loadIntrinsics() map[string]string {
	m := make(map[string]string, 96)
	add := func(typ string, names ...string) {
		for _, n := range names {
			m[n] = typ
		}
	}

	add("INTEGER",
		"IABS", "IDIM", "IDINT", "IDNINT", "IFIX", "INT", "ISIGN",
		"ICHAR", "INDEX", "LEN", "NINT", "MOD", "MAX0", "MIN0")
	add("REAL",
		"ABS", "ACOS", "AIMAG", "AINT", "ALOG", "ALOG10", "AMAX0",
		"AMAX1", "AMIN0", "AMIN1", "AMOD", "ANINT", "ASIN", "ATAN",
		"ATAN2", "CABS", "COS", "COSH", "DIM", "EXP", "FLOAT", "LOG",
		"LOG10", "MAX", "MAX1", "MIN", "MIN1", "REAL", "SIGN", "SIN",
		"SINH", "SNGL", "SQRT", "TAN", "TANH")
	add("DOUBLE PRECISION",
		"DABS", "DACOS", "DASIN", "DATAN", "DATAN2", "DBLE", "DCOS",
		"DCOSH", "DDIM", "DEXP", "DINT", "DLOG", "DLOG10", "DMAX1",
		"DMIN1", "DMOD", "DNINT", "DPROD", "DSIGN", "DSIN", "DSINH",
		"DSQRT", "DTAN", "DTANH")
	add("COMPLEX",
		"CCOS", "CEXP", "CLOG", "CMPLX", "CONJG", "CSIN", "CSQRT")
	add("LOGICAL", "LGE", "LGT", "LLE", "LLT")
	add("CHARACTER", "CHAR")

	return m
}
