package main

import "fmt"

func main() {
	x, y := 1, 2
	var u, v = "a", "b"
	fmt.Println(x+y, u+v)
}

//<<<<<inline,6,2,6,3,pass
