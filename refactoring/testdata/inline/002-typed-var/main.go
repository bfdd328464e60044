package main

import "fmt"

type celsius float64

func main() {
	var t celsius = 20
	var u, v = 1, "x"
	fmt.Println(t, u, v)
}

//<<<<<inline,10,14,10,15,pass
