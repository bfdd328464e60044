package main

func f() int {
	for i := 0; i < 3; i++ {
		if x := i * 2; x > 2 {
			return x + 1
		}
	}
	return 0
}

func main() {
	f()
}

//<<<<<extractlocal,5,11,5,16,twice,false,pass
//<<<<<extractlocal,5,18,5,23,big,false,fail
