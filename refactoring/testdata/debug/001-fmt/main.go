package main

func main() {
	x := 1+2
	_ = x
}

//<<<<<debug,4,7,4,10,fmt,pass
