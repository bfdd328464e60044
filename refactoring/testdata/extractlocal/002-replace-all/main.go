package main

import "fmt"

func main() {
	a, b := 3, 4
	fmt.Println(a*b + 1)
	if a > 0 {
		fmt.Println(a * b)
	}
	c := a * b
	fmt.Println(c)
}

//<<<<<extractlocal,7,14,7,17,prod,true,pass
